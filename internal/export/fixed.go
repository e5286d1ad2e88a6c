package export

import (
	"bytes"
	"embed"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif" // decoders for embedded images
	"image/jpeg"
	_ "image/png"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/gogotex/blogdraft/pkg/logger"
)

const (
	ptToMM      = 0.3528
	bodySize    = 12.0
	leading     = 1.4
	quoteIndent = 8.0
	paraGap     = 2.0
	jpegQuality = 98
)

// Text is drawn with embedded UTF-8 TrueType faces. Core fonts are only
// used for monospace runs that fit cp1252, or when a face fails to load.
const (
	unicodeFamily = "dejavu"
	customFamily  = "custom"
)

//go:embed fonts/*.ttf
var fontFS embed.FS

var embeddedFaces = map[string]string{
	"":   "fonts/DejaVuSansCondensed.ttf",
	"B":  "fonts/DejaVuSansCondensed-Bold.ttf",
	"I":  "fonts/DejaVuSansCondensed-Oblique.ttf",
	"BI": "fonts/DejaVuSansCondensed-BoldOblique.ttf",
}

var headingSizes = map[atom.Atom]float64{
	atom.H1: 22, atom.H2: 18, atom.H3: 15, atom.H4: 13, atom.H5: 13, atom.H6: 13,
}

// FixedLayoutEncoder renders the layout container into a paginated PDF.
// Embedded data URI images are rasterized to JPEG and scaled to fit the
// page; images that are not embedded are skipped.
type FixedLayoutEncoder struct {
	PageSize    string
	Orientation string
	MarginMM    float64
	// FontFile optionally names a TrueType font used for all text instead
	// of the bundled DejaVu faces, for scripts DejaVu lacks (CJK).
	FontFile string
	Compress bool
}

// NewFixedLayoutEncoder returns the default A4 portrait setup with 10mm margins.
func NewFixedLayoutEncoder() FixedLayoutEncoder {
	return FixedLayoutEncoder{PageSize: "A4", Orientation: "P", MarginMM: 10, Compress: true}
}

func (e FixedLayoutEncoder) Encode(src Source) ([]byte, error) {
	layout, err := BuildLayout(src)
	if err != nil {
		return nil, fmt.Errorf("build layout: %w", err)
	}
	return e.Render(layout)
}

// Render paints an already built layout.
func (e FixedLayoutEncoder) Render(l *Layout) ([]byte, error) {
	root := l.Root()
	if root.Length() == 0 {
		return nil, errors.New("layout has no render root")
	}

	pdf := fpdf.New(e.Orientation, "mm", e.PageSize, "")
	pdf.SetCompression(e.Compress)
	pdf.SetMargins(e.MarginMM, e.MarginMM, e.MarginMM)
	pdf.SetAutoPageBreak(true, e.MarginMM)
	pdf.SetTitle(l.Title(), true)
	pdf.AddPage()

	r := &pdfRenderer{
		pdf:       pdf,
		tr:        pdf.UnicodeTranslatorFromDescriptor(""),
		faces:     map[string]bool{},
		lineEmpty: true,
	}
	if e.FontFile != "" {
		data, err := os.ReadFile(e.FontFile)
		if err != nil {
			logger.Warnf("fixed layout: font file unavailable, using bundled fonts: %v", err)
		} else {
			r.custom = data
		}
	}
	r.children(root.Nodes[0], textStyle{size: bodySize})

	if err := pdf.Error(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type textStyle struct {
	bold, italic, underline bool
	mono, pre               bool
	size                    float64
	link                    string
}

func (s textStyle) lineHeight() float64 {
	return s.size * ptToMM * leading
}

func (s textStyle) fontStyle() string {
	var b strings.Builder
	if s.bold {
		b.WriteByte('B')
	}
	if s.italic {
		b.WriteByte('I')
	}
	if s.underline {
		b.WriteByte('U')
	}
	return b.String()
}

type pdfRenderer struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
	// custom holds FontFile's bytes; nil means the bundled faces.
	custom []byte
	// faces records which family+style combinations loaded.
	faces     map[string]bool
	utf8      bool
	lineEmpty bool
	images    int
}

func (r *pdfRenderer) children(n *html.Node, st textStyle) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		r.node(c, st)
	}
}

func (r *pdfRenderer) node(n *html.Node, st textStyle) {
	switch n.Type {
	case html.TextNode:
		r.text(n.Data, st)
		return
	case html.ElementNode:
	default:
		return
	}

	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Head:
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		st.bold = true
		st.size = headingSizes[n.DataAtom]
		r.block(n, st)
	case atom.P, atom.Div:
		r.block(n, st)
	case atom.Pre:
		st.mono, st.pre = true, true
		r.block(n, st)
	case atom.Blockquote:
		r.breakLine(st)
		left, top, right, _ := r.pdf.GetMargins()
		r.pdf.SetMargins(left+quoteIndent, top, right)
		r.pdf.SetX(left + quoteIndent)
		st.italic = true
		r.block(n, st)
		r.pdf.SetMargins(left, top, right)
		r.pdf.SetX(left)
	case atom.Ul, atom.Ol:
		r.list(n, st)
	case atom.Br:
		r.pdf.Ln(st.lineHeight())
		r.lineEmpty = true
	case atom.Strong, atom.B:
		st.bold = true
		r.children(n, st)
	case atom.Em, atom.I:
		st.italic = true
		r.children(n, st)
	case atom.U:
		st.underline = true
		r.children(n, st)
	case atom.Code:
		st.mono = true
		r.children(n, st)
	case atom.A:
		st.link = attr(n, "href")
		st.underline = st.link != ""
		r.children(n, st)
	case atom.Img:
		r.image(attr(n, "src"), st)
	default:
		r.children(n, st)
	}
}

func (r *pdfRenderer) block(n *html.Node, st textStyle) {
	r.breakLine(st)
	r.children(n, st)
	r.breakLine(st)
	r.pdf.Ln(paraGap)
}

func (r *pdfRenderer) list(n *html.Node, st textStyle) {
	r.breakLine(st)
	ordered := n.DataAtom == atom.Ol
	num := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.DataAtom != atom.Li {
			continue
		}
		num++
		marker := "• "
		if ordered && attr(c, "data-list") != "bullet" {
			marker = strconv.Itoa(num) + ". "
		}
		r.write(marker, st)
		r.children(c, st)
		r.breakLine(st)
	}
	r.pdf.Ln(paraGap)
}

func (r *pdfRenderer) text(raw string, st textStyle) {
	if st.pre {
		for i, line := range strings.Split(raw, "\n") {
			if i > 0 {
				r.pdf.Ln(st.lineHeight())
				r.lineEmpty = true
			}
			if line != "" {
				r.write(line, st)
			}
		}
		return
	}
	txt := whitespaceRe.ReplaceAllString(raw, " ")
	if r.lineEmpty {
		txt = strings.TrimLeft(txt, " ")
	}
	if txt == "" {
		return
	}
	r.write(txt, st)
}

func (r *pdfRenderer) write(txt string, st textStyle) {
	r.setFont(txt, st)
	if !r.utf8 {
		txt = r.tr(txt)
	}
	if st.link != "" {
		r.pdf.WriteLinkString(st.lineHeight(), txt, st.link)
	} else {
		r.pdf.Write(st.lineHeight(), txt)
	}
	r.lineEmpty = false
}

// setFont selects the face for one run of text.
func (r *pdfRenderer) setFont(txt string, st textStyle) {
	style := st.fontStyle()
	if st.mono && fitsCP1252(txt) {
		r.pdf.SetFont("Courier", style, st.size)
		r.utf8 = false
		return
	}
	if family, ok := r.unicodeFace(strings.ReplaceAll(style, "U", "")); ok {
		r.pdf.SetFont(family, style, st.size)
		r.utf8 = true
		return
	}
	r.pdf.SetFont("Helvetica", style, st.size)
	r.utf8 = false
}

// unicodeFace registers the UTF-8 face for style on first use and reports
// whether it loaded.
func (r *pdfRenderer) unicodeFace(style string) (string, bool) {
	family := unicodeFamily
	if r.custom != nil {
		family = customFamily
	}
	if ok, seen := r.faces[family+style]; seen {
		return family, ok
	}

	data := r.custom
	if data == nil {
		var err error
		if data, err = fontFS.ReadFile(embeddedFaces[style]); err != nil {
			r.faces[family+style] = false
			return family, false
		}
	}
	r.pdf.AddUTF8FontFromBytes(family, style, data)
	if r.pdf.Err() {
		logger.Warnf("fixed layout: cannot load %s font (%q): %v", family, style, r.pdf.Error())
		r.pdf.ClearError()
		if r.custom != nil {
			r.custom = nil
			r.faces[family+style] = false
			return r.unicodeFace(style)
		}
		r.faces[family+style] = false
		return family, false
	}
	r.faces[family+style] = true
	return family, true
}

// fitsCP1252 reports whether the core-font translator can draw s without
// substituting characters.
func fitsCP1252(s string) bool {
	for _, c := range s {
		if c > 0xFF || (c >= 0x80 && c <= 0x9F) {
			return false
		}
	}
	return true
}

func (r *pdfRenderer) breakLine(st textStyle) {
	if !r.lineEmpty {
		r.pdf.Ln(st.lineHeight())
		r.lineEmpty = true
	}
}

func (r *pdfRenderer) image(src string, st textStyle) {
	data, err := rasterize(src)
	if err != nil {
		logger.Debugf("fixed layout: skipping image: %v", err)
		return
	}
	r.breakLine(st)
	r.images++
	name := fmt.Sprintf("img%d", r.images)
	opts := fpdf.ImageOptions{ImageType: "JPG"}
	info := r.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
	if info == nil {
		return
	}

	pageW, pageH := r.pdf.GetPageSize()
	left, top, right, bottom := r.pdf.GetMargins()
	maxW := pageW - left - right
	maxH := pageH - top - bottom
	w, h := info.Width(), info.Height()
	if w > maxW {
		h = h * maxW / w
		w = maxW
	}
	if h > maxH {
		w = w * maxH / h
		h = maxH
	}
	r.pdf.ImageOptions(name, left, 0, w, h, true, opts, 0, "")
	r.pdf.Ln(paraGap)
	r.lineEmpty = true
}

// rasterize decodes an embedded data URI image and re-encodes it as an
// opaque JPEG, flattening transparency onto white.
func rasterize(src string) ([]byte, error) {
	if !strings.HasPrefix(src, "data:") {
		return nil, fmt.Errorf("not an embedded image: %.40q", src)
	}
	comma := strings.IndexByte(src, ',')
	if comma < 0 {
		return nil, errors.New("malformed data uri")
	}
	meta, payload := src[len("data:"):comma], src[comma+1:]
	var raw []byte
	if strings.HasSuffix(meta, ";base64") {
		b, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("decode base64: %w", err)
		}
		raw = b
	} else {
		s, err := url.PathUnescape(payload)
		if err != nil {
			return nil, err
		}
		raw = []byte(s)
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	flat := image.NewRGBA(img.Bounds())
	draw.Draw(flat, flat.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.Draw(flat, flat.Bounds(), img, img.Bounds().Min, draw.Over)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, flat, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
