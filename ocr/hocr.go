package ocr

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/tsawler/cvlayout/model"
)

// ParseHOCR converts Tesseract hOCR markup into a token page. Word boxes
// come from ocrx_word title attributes ("bbox x0 y0 x1 y1; x_wconf NN");
// page dimensions come from the ocr_page element. Words wrapped in <strong>
// or <b> are flagged bold, which Tesseract emits when font attributes are
// enabled.
func ParseHOCR(hocr string, pageNumber int) (model.Page, error) {
	root, err := html.Parse(strings.NewReader(hocr))
	if err != nil {
		return model.Page{}, fmt.Errorf("parse hOCR: %w", err)
	}

	page := model.Page{Number: pageNumber}
	walkHOCR(root, false, &page)
	return page, nil
}

func walkHOCR(n *html.Node, bold bool, page *model.Page) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "strong", "b":
			bold = true
		}
		switch hocrClass(n) {
		case "ocr_page":
			if box, ok := parseBBox(attr(n, "title")); ok {
				page.Width = box.X1
				page.Height = box.Y1
			}
		case "ocrx_word":
			if tok, ok := wordToken(n, bold); ok {
				page.Tokens = append(page.Tokens, tok)
			}
			return // word text already collected
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkHOCR(c, bold, page)
	}
}

func wordToken(n *html.Node, bold bool) (model.Token, bool) {
	box, ok := parseBBox(attr(n, "title"))
	if !ok {
		return model.Token{}, false
	}
	text := strings.TrimSpace(nodeText(n, &bold))
	if text == "" {
		return model.Token{}, false
	}
	return model.Token{
		Text: text,
		X0:   box.X0,
		X1:   box.X1,
		Y0:   box.Y0,
		Y1:   box.Y1,
		Bold: bold,
	}, true
}

type hocrBox struct {
	X0, Y0, X1, Y1 float64
}

// parseBBox extracts the bbox clause from an hOCR title attribute.
func parseBBox(title string) (hocrBox, bool) {
	for _, clause := range strings.Split(title, ";") {
		fields := strings.Fields(strings.TrimSpace(clause))
		if len(fields) != 5 || fields[0] != "bbox" {
			continue
		}
		var vals [4]float64
		for i, f := range fields[1:] {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return hocrBox{}, false
			}
			vals[i] = v
		}
		return hocrBox{X0: vals[0], Y0: vals[1], X1: vals[2], Y1: vals[3]}, true
	}
	return hocrBox{}, false
}

// nodeText concatenates the text content below n, noting bold wrappers.
func nodeText(n *html.Node, bold *bool) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
		case html.ElementNode:
			if n.Data == "strong" || n.Data == "b" {
				*bold = true
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func hocrClass(n *html.Node) string {
	return attr(n, "class")
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}
