package content

import (
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"newsingest/internal/domain"
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".svg":  true,
}

// ExtractImage walks the image signals in priority order: enclosure (only
// if it looks like an image), media:content, media:thumbnail, og:image in
// the content HTML, then the first <img> in content and description. When
// nothing matches it returns an empty string; no fallback image is ever
// synthesized.
func ExtractImage(item domain.RawItem) string {
	if item.EnclosureURL != "" && IsImageURL(item.EnclosureURL) {
		return item.EnclosureURL
	}
	if item.MediaContentURL != "" {
		return item.MediaContentURL
	}
	if item.MediaThumbnailURL != "" {
		return item.MediaThumbnailURL
	}
	if img := ogImage(item.Content); img != "" {
		return img
	}
	if img := firstImg(item.Content); img != "" {
		return img
	}
	if img := firstImg(item.Description); img != "" {
		return img
	}
	return ""
}

// IsImageURL reports whether the URL path carries a known image extension.
func IsImageURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	ext := strings.ToLower(path.Ext(parsed.Path))
	return imageExtensions[ext]
}

func ogImage(html string) string {
	if html == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	content, _ := doc.Find(`meta[property="og:image"]`).First().Attr("content")
	return strings.TrimSpace(content)
}

func firstImg(html string) string {
	if html == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	src, _ := doc.Find("img[src]").First().Attr("src")
	return strings.TrimSpace(src)
}
