package main

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Exporter turns a document into a presentation file.
type Exporter interface {
	Export(ctx context.Context, doc Document) ([]byte, error)
}

// PPTXExporter writes a minimal Office Open XML presentation: one master,
// one blank layout, one theme and a slide part per slide.
type PPTXExporter struct{}

const (
	nsA = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsR = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsP = "http://schemas.openxmlformats.org/presentationml/2006/main"

	relSlide       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide"
	relSlideMaster = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster"
	relSlideLayout = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout"
	relTheme       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/theme"
	relImage       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
	relOffice      = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"

	xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"
)

type mediaPart struct {
	name string
	data []byte
}

type pptxWriter struct {
	zw    *zip.Writer
	media []mediaPart
}

func (PPTXExporter) Export(ctx context.Context, doc Document) ([]byte, error) {
	if len(doc.Slides) == 0 {
		return nil, errors.New("document has no slides")
	}
	var buf bytes.Buffer
	w := &pptxWriter{zw: zip.NewWriter(&buf)}

	for i, s := range doc.Slides {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		body, rels := w.slideXML(s)
		if err := w.part(fmt.Sprintf("ppt/slides/slide%d.xml", i+1), body); err != nil {
			return nil, err
		}
		if err := w.part(fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", i+1), rels); err != nil {
			return nil, err
		}
	}
	for _, m := range w.media {
		if err := w.part("ppt/media/"+m.name, string(m.data)); err != nil {
			return nil, err
		}
	}

	n := len(doc.Slides)
	fixed := []struct{ name, body string }{
		{"[Content_Types].xml", contentTypesXML(n)},
		{"_rels/.rels", relsXML([]rel{{"rId1", relOffice, "ppt/presentation.xml"}})},
		{"ppt/presentation.xml", presentationXML(n)},
		{"ppt/_rels/presentation.xml.rels", presentationRelsXML(n)},
		{"ppt/slideMasters/slideMaster1.xml", slideMasterXML},
		{"ppt/slideMasters/_rels/slideMaster1.xml.rels", relsXML([]rel{
			{"rId1", relSlideLayout, "../slideLayouts/slideLayout1.xml"},
			{"rId2", relTheme, "../theme/theme1.xml"},
		})},
		{"ppt/slideLayouts/slideLayout1.xml", slideLayoutXML},
		{"ppt/slideLayouts/_rels/slideLayout1.xml.rels", relsXML([]rel{
			{"rId1", relSlideMaster, "../slideMasters/slideMaster1.xml"},
		})},
		{"ppt/theme/theme1.xml", themeXML},
	}
	for _, p := range fixed {
		if err := w.part(p.name, p.body); err != nil {
			return nil, err
		}
	}
	if err := w.zw.Close(); err != nil {
		return nil, errors.Wrap(err, "close pptx archive")
	}
	return buf.Bytes(), nil
}

func (w *pptxWriter) part(name, body string) error {
	f, err := w.zw.Create(name)
	if err != nil {
		return errors.Wrapf(err, "create %s", name)
	}
	if _, err := f.Write([]byte(body)); err != nil {
		return errors.Wrapf(err, "write %s", name)
	}
	return nil
}

type rel struct {
	id, typ, target string
}

func relsXML(rels []rel) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	for _, r := range rels {
		fmt.Fprintf(&b, `<Relationship Id="%s" Type="%s" Target="%s"/>`, r.id, r.typ, r.target)
	}
	b.WriteString(`</Relationships>`)
	return b.String()
}

func contentTypesXML(slides int) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`)
	b.WriteString(`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`)
	b.WriteString(`<Default Extension="xml" ContentType="application/xml"/>`)
	b.WriteString(`<Default Extension="png" ContentType="image/png"/>`)
	b.WriteString(`<Default Extension="jpeg" ContentType="image/jpeg"/>`)
	b.WriteString(`<Default Extension="gif" ContentType="image/gif"/>`)
	b.WriteString(`<Override PartName="/ppt/presentation.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"/>`)
	b.WriteString(`<Override PartName="/ppt/slideMasters/slideMaster1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideMaster+xml"/>`)
	b.WriteString(`<Override PartName="/ppt/slideLayouts/slideLayout1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideLayout+xml"/>`)
	b.WriteString(`<Override PartName="/ppt/theme/theme1.xml" ContentType="application/vnd.openxmlformats-officedocument.theme+xml"/>`)
	for i := 1; i <= slides; i++ {
		fmt.Fprintf(&b, `<Override PartName="/ppt/slides/slide%d.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slide+xml"/>`, i)
	}
	b.WriteString(`</Types>`)
	return b.String()
}

func presentationXML(slides int) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	fmt.Fprintf(&b, `<p:presentation xmlns:a="%s" xmlns:r="%s" xmlns:p="%s">`, nsA, nsR, nsP)
	b.WriteString(`<p:sldMasterIdLst><p:sldMasterId id="2147483648" r:id="rId1"/></p:sldMasterIdLst>`)
	b.WriteString(`<p:sldIdLst>`)
	for i := 0; i < slides; i++ {
		fmt.Fprintf(&b, `<p:sldId id="%d" r:id="rId%d"/>`, 256+i, i+3)
	}
	b.WriteString(`</p:sldIdLst>`)
	fmt.Fprintf(&b, `<p:sldSz cx="%d" cy="%d" type="screen4x3"/>`, slideCX, slideCY)
	fmt.Fprintf(&b, `<p:notesSz cx="%d" cy="%d"/>`, slideCY, slideCX)
	b.WriteString(`</p:presentation>`)
	return b.String()
}

func presentationRelsXML(slides int) string {
	rels := []rel{
		{"rId1", relSlideMaster, "slideMasters/slideMaster1.xml"},
		{"rId2", relTheme, "theme/theme1.xml"},
	}
	for i := 1; i <= slides; i++ {
		rels = append(rels, rel{fmt.Sprintf("rId%d", i+2), relSlide, fmt.Sprintf("slides/slide%d.xml", i)})
	}
	return relsXML(rels)
}

func emu(px float64) int64 {
	return int64(math.Round(px * emuPerPixel))
}

func xmlEscape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

// hexOrEmpty is the 6-digit OOXML colour for s, or "" when s is
// transparent or unparseable.
func hexOrEmpty(s string) string {
	c, ok, err := ParseColor(s)
	if err != nil || !ok {
		return ""
	}
	return strings.ToUpper(strings.TrimPrefix(c.Hex(), "#"))
}

func solidFill(hex string) string {
	if hex == "" {
		return `<a:noFill/>`
	}
	return fmt.Sprintf(`<a:solidFill><a:srgbClr val="%s"/></a:solidFill>`, hex)
}

func xfrm(e Element) string {
	return fmt.Sprintf(`<a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm>`,
		emu(e.X), emu(e.Y), emu(e.Width), emu(e.Height))
}

func geometry(e Element) string {
	if e.Style.BorderRadius <= 0 {
		return `<a:prstGeom prst="rect"><a:avLst/></a:prstGeom>`
	}
	short := math.Min(e.Width, e.Height)
	adj := int64(math.Min(50000, e.Style.BorderRadius/short*100000))
	return fmt.Sprintf(`<a:prstGeom prst="roundRect"><a:avLst><a:gd name="adj" fmla="val %d"/></a:avLst></a:prstGeom>`, adj)
}

var alignments = map[string]string{"left": "l", "center": "ctr", "right": "r", "justify": "just"}

func runProps(st Style) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<a:rPr lang="en-US" sz="%d"`, int64(math.Round(st.FontSize*100)))
	if st.Bold() {
		b.WriteString(` b="1"`)
	}
	if st.Italic() {
		b.WriteString(` i="1"`)
	}
	if st.Underline() {
		b.WriteString(` u="sng"`)
	}
	b.WriteString(` dirty="0">`)
	color := hexOrEmpty(st.Color)
	if color == "" {
		color = "000000"
	}
	b.WriteString(solidFill(color))
	fontFamily := xmlEscape(st.FontFamily)
	fmt.Fprintf(&b, `<a:latin typeface="%s"/><a:cs typeface="%s"/>`, fontFamily, fontFamily)
	b.WriteString(`</a:rPr>`)
	return b.String()
}

func textBody(text string, st Style, anchorCenter bool) string {
	var b strings.Builder
	ins := emu(textPadding)
	anchor := "t"
	if anchorCenter {
		anchor = "ctr"
	}
	fmt.Fprintf(&b, `<p:txBody><a:bodyPr wrap="square" lIns="%d" tIns="%d" rIns="%d" bIns="%d" anchor="%s" rtlCol="0"><a:noAutofit/></a:bodyPr><a:lstStyle/>`,
		ins, ins, ins, ins, anchor)
	algn := alignments[st.TextAlign]
	if algn == "" {
		algn = "l"
	}
	if anchorCenter {
		algn = "ctr"
	}
	rp := runProps(st)
	for _, line := range strings.Split(text, "\n") {
		fmt.Fprintf(&b, `<a:p><a:pPr algn="%s"/>`, algn)
		if line != "" {
			fmt.Fprintf(&b, `<a:r>%s<a:t>%s</a:t></a:r>`, rp, xmlEscape(line))
		}
		fmt.Fprintf(&b, `<a:endParaRPr lang="en-US" sz="%d" dirty="0"/></a:p>`, int64(math.Round(st.FontSize*100)))
	}
	b.WriteString(`</p:txBody>`)
	return b.String()
}

// slideXML renders one slide part and its relationships. Shape ids start at
// 2; id 1 is the group shape tree.
func (w *pptxWriter) slideXML(s Slide) (string, string) {
	rels := []rel{{"rId1", relSlideLayout, "../slideLayouts/slideLayout1.xml"}}
	var b strings.Builder
	b.WriteString(xmlHeader)
	fmt.Fprintf(&b, `<p:sld xmlns:a="%s" xmlns:r="%s" xmlns:p="%s"><p:cSld>`, nsA, nsR, nsP)
	if bg := hexOrEmpty(s.BackgroundColor); bg != "" {
		fmt.Fprintf(&b, `<p:bg><p:bgPr>%s<a:effectLst/></p:bgPr></p:bg>`, solidFill(bg))
	}
	b.WriteString(`<p:spTree><p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>`)
	b.WriteString(`<p:grpSpPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="0" cy="0"/><a:chOff x="0" y="0"/><a:chExt cx="0" cy="0"/></a:xfrm></p:grpSpPr>`)

	for i, el := range s.Elements {
		id := i + 2
		switch el.Type {
		case ElementText:
			fmt.Fprintf(&b, `<p:sp><p:nvSpPr><p:cNvPr id="%d" name="Text %d"/><p:cNvSpPr txBox="1"/><p:nvPr/></p:nvSpPr>`, id, id)
			fmt.Fprintf(&b, `<p:spPr>%s%s%s</p:spPr>`, xfrm(el), geometry(el), solidFill(hexOrEmpty(el.Style.BackgroundColor)))
			b.WriteString(textBody(el.Content, el.Style, false))
			b.WriteString(`</p:sp>`)
		case ElementImage:
			mediaType, data, err := decodeDataURL(el.Content)
			if err != nil || !strings.HasPrefix(mediaType, "image/") {
				b.WriteString(placeholderXML(el, id))
				continue
			}
			name := fmt.Sprintf("image%d.%s", len(w.media)+1, imageExtension(mediaType))
			w.media = append(w.media, mediaPart{name: name, data: data})
			rid := fmt.Sprintf("rId%d", len(rels)+1)
			rels = append(rels, rel{rid, relImage, "../media/" + name})
			fmt.Fprintf(&b, `<p:pic><p:nvPicPr><p:cNvPr id="%d" name="Picture %d"/><p:cNvPicPr><a:picLocks noChangeAspect="1"/></p:cNvPicPr><p:nvPr/></p:nvPicPr>`, id, id)
			fmt.Fprintf(&b, `<p:blipFill><a:blip r:embed="%s"/><a:stretch><a:fillRect/></a:stretch></p:blipFill>`, rid)
			fmt.Fprintf(&b, `<p:spPr>%s<a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr></p:pic>`, xfrm(el))
		case ElementShape:
			fill := hexOrEmpty(el.Style.BackgroundColor)
			if fill == "" {
				fill = "4A90D9"
			}
			fmt.Fprintf(&b, `<p:sp><p:nvSpPr><p:cNvPr id="%d" name="Shape %d"/><p:cNvSpPr/><p:nvPr/></p:nvSpPr>`, id, id)
			fmt.Fprintf(&b, `<p:spPr>%s%s%s<a:ln><a:noFill/></a:ln></p:spPr></p:sp>`, xfrm(el), geometry(el), solidFill(fill))
		default:
			b.WriteString(placeholderXML(el, id))
		}
	}
	b.WriteString(`</p:spTree></p:cSld><p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr></p:sld>`)
	return b.String(), relsXML(rels)
}

func placeholderXML(el Element, id int) string {
	st := defaultStyle()
	st.FontSize = 12
	st.Color = "#616161"
	var b strings.Builder
	fmt.Fprintf(&b, `<p:sp><p:nvSpPr><p:cNvPr id="%d" name="Placeholder %d"/><p:cNvSpPr/><p:nvPr/></p:nvSpPr>`, id, id)
	fmt.Fprintf(&b, `<p:spPr>%s<a:prstGeom prst="rect"><a:avLst/></a:prstGeom>%s<a:ln w="12700">%s</a:ln></p:spPr>`,
		xfrm(el), solidFill("E0E0E0"), solidFill("9E9E9E"))
	b.WriteString(textBody(string(el.Type), st, true))
	b.WriteString(`</p:sp>`)
	return b.String()
}

// ExportFileName derives the download name from the deck title, falling
// back to a date stamp when nothing alphanumeric is left.
func ExportFileName(title string, now time.Time) string {
	if name := alphanumeric(title); name != "" {
		return name + ".pptx"
	}
	return "slides-" + now.Format("2006-01-02") + ".pptx"
}

var slideMasterXML = xmlHeader +
	`<p:sldMaster xmlns:a="` + nsA + `" xmlns:r="` + nsR + `" xmlns:p="` + nsP + `">` +
	`<p:cSld><p:bg><p:bgRef idx="1001"><a:schemeClr val="bg1"/></p:bgRef></p:bg>` +
	`<p:spTree><p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>` +
	`<p:grpSpPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="0" cy="0"/><a:chOff x="0" y="0"/><a:chExt cx="0" cy="0"/></a:xfrm></p:grpSpPr>` +
	`</p:spTree></p:cSld>` +
	`<p:clrMap bg1="lt1" tx1="dk1" bg2="lt2" tx2="dk2" accent1="accent1" accent2="accent2" accent3="accent3" accent4="accent4" accent5="accent5" accent6="accent6" hlink="hlink" folHlink="folHlink"/>` +
	`<p:sldLayoutIdLst><p:sldLayoutId id="2147483649" r:id="rId1"/></p:sldLayoutIdLst>` +
	`<p:txStyles><p:titleStyle/><p:bodyStyle/><p:otherStyle/></p:txStyles>` +
	`</p:sldMaster>`

var slideLayoutXML = xmlHeader +
	`<p:sldLayout xmlns:a="` + nsA + `" xmlns:r="` + nsR + `" xmlns:p="` + nsP + `" type="blank" preserve="1">` +
	`<p:cSld name="Blank"><p:spTree><p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>` +
	`<p:grpSpPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="0" cy="0"/><a:chOff x="0" y="0"/><a:chExt cx="0" cy="0"/></a:xfrm></p:grpSpPr>` +
	`</p:spTree></p:cSld><p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr></p:sldLayout>`

var themeXML = xmlHeader +
	`<a:theme xmlns:a="` + nsA + `" name="Slidedeck">` +
	`<a:themeElements>` +
	`<a:clrScheme name="Slidedeck">` +
	`<a:dk1><a:srgbClr val="000000"/></a:dk1><a:lt1><a:srgbClr val="FFFFFF"/></a:lt1>` +
	`<a:dk2><a:srgbClr val="44546A"/></a:dk2><a:lt2><a:srgbClr val="E7E6E6"/></a:lt2>` +
	`<a:accent1><a:srgbClr val="4A90D9"/></a:accent1><a:accent2><a:srgbClr val="ED7D31"/></a:accent2>` +
	`<a:accent3><a:srgbClr val="A5A5A5"/></a:accent3><a:accent4><a:srgbClr val="FFC000"/></a:accent4>` +
	`<a:accent5><a:srgbClr val="5B9BD5"/></a:accent5><a:accent6><a:srgbClr val="70AD47"/></a:accent6>` +
	`<a:hlink><a:srgbClr val="0563C1"/></a:hlink><a:folHlink><a:srgbClr val="954F72"/></a:folHlink>` +
	`</a:clrScheme>` +
	`<a:fontScheme name="Slidedeck">` +
	`<a:majorFont><a:latin typeface="Arial"/><a:ea typeface=""/><a:cs typeface=""/></a:majorFont>` +
	`<a:minorFont><a:latin typeface="Arial"/><a:ea typeface=""/><a:cs typeface=""/></a:minorFont>` +
	`</a:fontScheme>` +
	`<a:fmtScheme name="Slidedeck">` +
	`<a:fillStyleLst><a:solidFill><a:schemeClr val="phClr"/></a:solidFill><a:solidFill><a:schemeClr val="phClr"/></a:solidFill><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:fillStyleLst>` +
	`<a:lnStyleLst><a:ln w="6350"><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:ln><a:ln w="12700"><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:ln><a:ln w="19050"><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:ln></a:lnStyleLst>` +
	`<a:effectStyleLst><a:effectStyle><a:effectLst/></a:effectStyle><a:effectStyle><a:effectLst/></a:effectStyle><a:effectStyle><a:effectLst/></a:effectStyle></a:effectStyleLst>` +
	`<a:bgFillStyleLst><a:solidFill><a:schemeClr val="phClr"/></a:solidFill><a:solidFill><a:schemeClr val="phClr"/></a:solidFill><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:bgFillStyleLst>` +
	`</a:fmtScheme>` +
	`</a:themeElements><a:objectDefaults/><a:extraClrSchemeLst/></a:theme>`
