// internal/handlers/meta.go
package handlers

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/aurelle/aurelle-backend/internal/models"
	"github.com/aurelle/aurelle-backend/internal/services"
	"github.com/aurelle/aurelle-backend/internal/utils"
)

// MetaHandler serves the crawler-facing surface: sitemap, robots, the web
// app manifest and server-rendered share previews for product links.
type MetaHandler struct {
	catalogService *services.CatalogService
	baseURL        string
}

func NewMetaHandler(catalogService *services.CatalogService, baseURL string) *MetaHandler {
	return &MetaHandler{
		catalogService: catalogService,
		baseURL:        strings.TrimRight(baseURL, "/"),
	}
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
}

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// GET /sitemap.xml
func (h *MetaHandler) Sitemap(c *gin.Context) {
	set := sitemapURLSet{
		Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs: []sitemapURL{
			{Loc: h.baseURL + "/", ChangeFreq: "daily"},
		},
	}

	categories, err := h.catalogService.ListCategories(c.Request.Context())
	if err == nil {
		for _, category := range categories {
			set.URLs = append(set.URLs, sitemapURL{
				Loc:        h.baseURL + "/c/" + category.Slug,
				ChangeFreq: "weekly",
			})
			for _, child := range category.Children {
				set.URLs = append(set.URLs, sitemapURL{
					Loc:        h.baseURL + "/c/" + child.Slug,
					ChangeFreq: "weekly",
				})
			}
		}
	}

	products, _, err := h.catalogService.SearchProducts(services.ProductSearchParams{
		PaginationParams: utils.PaginationParams{Page: 1, Limit: 100, Sort: "created_at", Order: "desc"},
	})
	if err == nil {
		for _, product := range products {
			set.URLs = append(set.URLs, sitemapURL{
				Loc:     h.baseURL + "/p/" + product.Slug,
				LastMod: product.UpdatedAt.Format("2006-01-02"),
			})
		}
	}

	c.XML(http.StatusOK, set)
}

// GET /robots.txt
func (h *MetaHandler) Robots(c *gin.Context) {
	body := fmt.Sprintf("User-agent: *\nAllow: /\nDisallow: /admin\nDisallow: /v1\n\nSitemap: %s/sitemap.xml\n", h.baseURL)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(body))
}

// GET /manifest.webmanifest
func (h *MetaHandler) Manifest(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":             "Aurelle",
		"short_name":       "Aurelle",
		"description":      "Fashion jewellery for every occasion",
		"start_url":        "/",
		"display":          "standalone",
		"background_color": "#fffaf5",
		"theme_color":      "#9a6b4f",
		"icons": []gin.H{
			{"src": "/icons/icon-192.png", "sizes": "192x192", "type": "image/png"},
			{"src": "/icons/icon-512.png", "sizes": "512x512", "type": "image/png"},
		},
	})
}

var previewTemplate = template.Must(template.New("preview").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<meta property="og:type" content="product">
<meta property="og:title" content="{{.Title}}">
<meta property="og:description" content="{{.Description}}">
<meta property="og:url" content="{{.URL}}">
{{if .Image}}<meta property="og:image" content="{{.Image}}">{{end}}
<meta property="product:price:amount" content="{{printf "%.2f" .Price}}">
<meta property="product:price:currency" content="INR">
<meta name="twitter:card" content="summary_large_image">
<meta http-equiv="refresh" content="0; url={{.URL}}">
<script type="application/ld+json">{{.JSONLD}}</script>
</head>
<body>
<p>Redirecting to <a href="{{.URL}}">{{.Title}}</a>…</p>
</body>
</html>
`))

type previewData struct {
	Title       string
	Description string
	URL         string
	Image       string
	Price       float64
	JSONLD      template.JS
}

// GET /preview/products/:slug
// Server-rendered OpenGraph page so shared product links unfurl in chat apps
// even though the storefront itself is a client-rendered app.
func (h *MetaHandler) ProductPreview(c *gin.Context) {
	product, err := h.catalogService.GetProductBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	pageURL := h.baseURL + "/p/" + product.Slug
	data := previewData{
		Title:       product.Name,
		Description: truncate(product.Description, 200),
		URL:         pageURL,
		Image:       product.PrimaryImage(),
		Price:       product.UnitPrice(),
	}
	if ld, err := json.Marshal(productJSONLD(product, pageURL)); err == nil {
		data.JSONLD = template.JS(ld)
	}

	c.Status(http.StatusOK)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := previewTemplate.Execute(c.Writer, data); err != nil {
		c.Status(http.StatusInternalServerError)
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}

func productJSONLD(p *models.Product, url string) map[string]interface{} {
	return map[string]interface{}{
		"@context":    "https://schema.org",
		"@type":       "Product",
		"name":        p.Name,
		"description": p.Description,
		"image":       []string(p.Images),
		"offers": map[string]interface{}{
			"@type":         "Offer",
			"priceCurrency": "INR",
			"price":         p.UnitPrice(),
			"availability":  availability(p),
			"url":           url,
		},
	}
}

func availability(p *models.Product) string {
	if p.Stock > 0 {
		return "https://schema.org/InStock"
	}
	return "https://schema.org/OutOfStock"
}
