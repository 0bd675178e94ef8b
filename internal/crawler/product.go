package crawler

import (
	"fmt"
	"io"
	"regexp"

	"golang.org/x/net/html"
)

const (
	imageWrapperID = "imgTagWrapperId"
	productTitleID = "productTitle"
)

// dynamicImagePattern matches the first quoted https URL in data-a-dynamic-image.
var dynamicImagePattern = regexp.MustCompile(`"(https://[^"]+)"`)

// ProductInfo holds what the retail product page exposes about a product.
// Either field is empty when the page does not carry it.
type ProductInfo struct {
	ImageURL string
	Title    string
}

// ProductParser extracts the main image and title from a retail product page.
type ProductParser struct{}

// NewProductParser creates a ProductParser.
func NewProductParser() *ProductParser {
	return &ProductParser{}
}

// Parse reads a retail product page.
func (p *ProductParser) Parse(r io.Reader) (ProductInfo, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return ProductInfo{}, fmt.Errorf("failed to parse product page: %w", err)
	}

	var info ProductInfo
	if wrapper := findFirst(doc, func(n *html.Node) bool { return hasID(n, imageWrapperID) }); wrapper != nil {
		if img := findFirst(wrapper, isElement("img")); img != nil {
			info.ImageURL = imageSource(img)
		}
	}
	if title := findFirst(doc, func(n *html.Node) bool { return hasID(n, productTitleID) }); title != nil {
		info.Title = textContent(title)
	}
	return info, nil
}

// imageSource picks src, then data-old-hires, then the first dynamic image URL.
func imageSource(img *html.Node) string {
	if src := getAttr(img, "src"); src != "" {
		return src
	}
	if hires := getAttr(img, "data-old-hires"); hires != "" {
		return hires
	}
	if m := dynamicImagePattern.FindStringSubmatch(getAttr(img, "data-a-dynamic-image")); m != nil {
		return m[1]
	}
	return ""
}
