package mangakatana

import "fmt"

func detailHTML(status, updatedAt string) string {
	return fmt.Sprintf(`<html><head><title>One Piece</title></head><body>
<div id="single_book">
  <div class="cover"><img src="/imgs/cover/one-piece.jpg"></div>
  <div class="info">
    <h1 class="heading">  One Piece </h1>
    <ul class="meta">
      <li><div class="d-cell-small label">Latest chapter(s):</div><div class="d-cell-small"><div class="new_chap">Chapter 1101.5</div></div></li>
      <li><div class="d-cell-small label">Status:</div><div class="d-cell-small value status ongoing">%s</div></li>
      <li><div class="d-cell-small label">Updated at:</div><div class="d-cell-small value updateAt">%s</div></li>
    </ul>
    <div class="genres"><a href="/genre/action">Action</a><a href="/genre/adventure">Adventure</a><a href="/genre/action">Action</a></div>
    <a class="uk-button fc_bt" href="/manga/one-piece.3/c1">First chapter</a>
  </div>
  <div class="summary"><p>Pirates looking for treasure.</p></div>
  <div class="chapters"><table>
    <tr><td><div class="chapter"><a href="https://mangakatana.com/manga/one-piece.3/c1101.5">Chapter 1101.5: Finale</a></div></td><td><div class="update_time">Jan-05-2020</div></td></tr>
    <tr><td><div class="chapter"><a href="/manga/one-piece.3/c1100">Chapter 1100</a></div></td><td><div class="update_time">sometime</div></td></tr>
    <tr><td><div class="chapter"><a href="/manga/one-piece.3/extra">Omake</a></div></td></tr>
    <tr><td><div class="chapter"><a href="/manga/one-piece.3/blank"></a></div></td></tr>
    <tr><td>no link here</td></tr>
  </table></div>
</div>
</body></html>`, status, updatedAt)
}

const searchHTML = `<html><body>
<div id="book_list">
  <div class="item" data-genre="action">
    <div class="wrap_img"><a href="https://mangakatana.com/manga/one-piece.3"><img src="https://mangakatana.com/imgs/cover/one-piece.jpg"></a></div>
    <div class="text">
      <h3 class="title"><a href="https://mangakatana.com/manga/one-piece.3">One Piece</a></h3>
      <div class="uk-width-1-2"><div class="date">Jan-05-2020</div></div>
      <div class="uk-text-right"><a href="https://mangakatana.com/manga/one-piece.3/c1">Chapter 1</a></div>
      <div class="status completed">Completed</div>
      <div class="genres"><a>Action</a> <a>Comedy</a></div>
      <div class="summary">Straw hats.</div>
    </div>
  </div>
  <div class="item">
    <div class="wrap_img"><img data-src="/imgs/cover/naruto.jpg"></div>
    <h3 class="title"><a href="/manga/naruto.12/">Naruto</a></h3>
    <div class="uk-width-1-2"><div class="date">05 Jan 2020</div></div>
  </div>
  <div class="item">
    <div class="summary">no title anchor at all</div>
  </div>
</div>
</body></html>`

const readerHTML = `<html><body>
<div id="imgs">
  <div id="page3" class="wrap_img uk-width-1-1"><img data-src="http://x/3.png" src="/loading.gif"></div>
  <div id="page1" class="wrap_img uk-width-1-1"><img src="https://i.example/1.jpg"></div>
  <div id="page2a" class="wrap_img uk-width-1-1"><img src="https://i.example/2a.jpg"></div>
  <div id="ad" class="wrap_img"><img src="https://ads.example/1.gif"></div>
  <div id="page4" class="wrap_img uk-width-1-1"><img></div>
  <div id="page5" class="wrap_img uk-width-1-1"></div>
</div>
</body></html>`
