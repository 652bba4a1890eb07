package htmlutil

import (
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

const page = `<html><body>
<ul>
  <li><a href="/board/view?id=1">  중천   Ch.70
  혼돈 목걸이 </a></li>
  <li><a href="https://other.example/post/2">마계 Ch.6</a></li>
  <li><a href="%zz">broken</a></li>
</ul>
</body></html>`

func TestGetAnchors(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	require.NoError(t, err)

	base, err := url.Parse("https://board.example/list?page=1")
	require.NoError(t, err)

	anchors := GetAnchors(base, doc.Find("li a"))
	require.Len(t, anchors, 2)

	require.Equal(t, "중천 Ch.70 혼돈 목걸이", anchors[0].Name)
	require.Equal(t, "https://board.example/board/view?id=1", anchors[0].Url.String())
	require.Equal(t, "마계 Ch.6", anchors[1].Name)
	require.Equal(t, "https://other.example/post/2", anchors[1].Url.String())
}

func TestSelectionText(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	require.NoError(t, err)
	require.Equal(t, "마계 Ch.6", SelectionText(doc.Find("li").Eq(1)))
	require.Equal(t, "", SelectionText(doc.Find("table")))
}
