// Package testpdf writes small, valid PDF files for tests: text placed with
// Td or Tm in a Courier font that carries glyph widths, and uncompressed 8 bit
// image XObjects.
package testpdf

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// CourierWidth is the advance of every Courier glyph in thousandths of the font size.
const CourierWidth = 600

// Text is one string drawn at X, Y (points, origin bottom left).
type Text struct {
	X, Y float64
	S    string
	// Matrix positions the string with Tm instead of Td.
	Matrix bool
}

// Image is a raw 8 bit per component image. ColorSpace is DeviceGray,
// DeviceRGB or DeviceCMYK and Data holds Width*Height*components bytes.
type Image struct {
	Width, Height int
	ColorSpace    string
	Data          []byte
}

// Page is one page of text and images.
type Page struct {
	FontSize float64 // 12 when zero
	Texts    []Text
	Images   []Image
}

// Build returns the bytes of a PDF containing pages in order.
func Build(pages ...Page) []byte {
	b := &builder{}
	// 1 catalog, 2 page tree, 3 font. Pages follow.
	b.reserve(3)

	var kids []string
	for _, p := range pages {
		kids = append(kids, fmt.Sprintf("%d 0 R", b.page(p)))
	}

	b.set(1, []byte("<< /Type /Catalog /Pages 2 0 R >>"))
	b.set(2, fmt.Appendf(nil, "<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(kids)))

	widths := strings.TrimSpace(strings.Repeat(fmt.Sprintf("%d ", CourierWidth), 126-32+1))
	b.set(3, fmt.Appendf(nil,
		"<< /Type /Font /Subtype /Type1 /BaseFont /Courier /Encoding /WinAnsiEncoding /FirstChar 32 /LastChar 126 /Widths [%s] >>",
		widths))
	return b.bytes()
}

// Write builds the PDF into dir/name and returns its path.
func Write(t testing.TB, dir, name string, pages ...Page) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, Build(pages...), 0o644); err != nil {
		t.Fatalf("write pdf: %v", err)
	}
	return path
}

type builder struct {
	objs [][]byte
}

func (b *builder) reserve(n int) {
	for range n {
		b.objs = append(b.objs, nil)
	}
}

func (b *builder) add(obj []byte) int {
	b.objs = append(b.objs, obj)
	return len(b.objs)
}

func (b *builder) set(nr int, obj []byte) { b.objs[nr-1] = obj }

func (b *builder) page(p Page) int {
	size := p.FontSize
	if size == 0 {
		size = 12
	}

	var content bytes.Buffer
	for _, t := range p.Texts {
		if t.Matrix {
			fmt.Fprintf(&content, "BT /F1 %g Tf 1 0 0 1 %g %g Tm (%s) Tj ET\n", size, t.X, t.Y, escape(t.S))
		} else {
			fmt.Fprintf(&content, "BT /F1 %g Tf %g %g Td (%s) Tj ET\n", size, t.X, t.Y, escape(t.S))
		}
	}

	var xobjects []string
	for i, img := range p.Images {
		nr := b.add(stream(fmt.Sprintf(
			"/Type /XObject /Subtype /Image /Width %d /Height %d /ColorSpace /%s /BitsPerComponent 8",
			img.Width, img.Height, img.ColorSpace), img.Data))
		name := fmt.Sprintf("Im%d", i+1)
		xobjects = append(xobjects, fmt.Sprintf("/%s %d 0 R", name, nr))
		fmt.Fprintf(&content, "q 100 0 0 100 72 %d cm /%s Do Q\n", 100+i*120, name)
	}

	contentNr := b.add(stream("", content.Bytes()))
	resources := "/Font << /F1 3 0 R >>"
	if len(xobjects) > 0 {
		resources += " /XObject << " + strings.Join(xobjects, " ") + " >>"
	}
	return b.add(fmt.Appendf(nil,
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << %s >> /Contents %d 0 R >>",
		resources, contentNr))
}

func (b *builder) bytes() []byte {
	var out bytes.Buffer
	out.WriteString("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")

	offsets := make([]int, len(b.objs))
	for i, obj := range b.objs {
		offsets[i] = out.Len()
		fmt.Fprintf(&out, "%d 0 obj\n", i+1)
		out.Write(obj)
		out.WriteString("\nendobj\n")
	}

	xref := out.Len()
	fmt.Fprintf(&out, "xref\n0 %d\n", len(b.objs)+1)
	out.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&out, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&out, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(b.objs)+1, xref)
	return out.Bytes()
}

func stream(dict string, data []byte) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "<< %s /Length %d >>\nstream\n", strings.TrimSpace(dict), len(data))
	buf.Write(data)
	buf.WriteString("\nendstream")
	return buf.Bytes()
}

func escape(s string) string {
	return strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`).Replace(s)
}
