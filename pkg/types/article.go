// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Celebrity is a recognized face reported by the analysis service.
type Celebrity struct {
	Name       string   `json:"name" yaml:"name"`
	Confidence float64  `json:"confidence,omitempty" yaml:"confidence,omitempty"`
	URLs       []string `json:"url,omitempty" yaml:"url,omitempty"`
}

// Label is a detected object or scene label.
type Label struct {
	Name       string  `json:"Name" yaml:"name"`
	Confidence float64 `json:"Confidence,omitempty" yaml:"confidence,omitempty"`
}

// ArticlePayload is the structured article returned by the analysis
// service. Every field is optional; renderers supply fallbacks.
type ArticlePayload struct {
	Title       string      `json:"article_title,omitempty" yaml:"article_title,omitempty"`
	Subtitle    string      `json:"article_subtitle,omitempty" yaml:"article_subtitle,omitempty"`
	Category    string      `json:"article_category,omitempty" yaml:"article_category,omitempty"`
	BodyText    string      `json:"article_content,omitempty" yaml:"article_content,omitempty"`
	ImageURL    string      `json:"image_url,omitempty" yaml:"image_url,omitempty"`
	Image       string      `json:"image,omitempty" yaml:"image,omitempty"`
	Celebrities []Celebrity `json:"celebrities,omitempty" yaml:"celebrities,omitempty"`
	Labels      []Label     `json:"labels,omitempty" yaml:"labels,omitempty"`
}

// UploadResult is the decoded success body of POST /api/upload.
type UploadResult struct {
	Message  string         `json:"message"`
	FileName string         `json:"filename"`
	ImageURL string         `json:"image_url"`
	Analysis ArticlePayload `json:"analysis"`
}

// Article returns the analysis with the top-level image URL filled in
// when the analysis itself carries none.
func (r UploadResult) Article() ArticlePayload {
	a := r.Analysis
	if a.ImageURL == "" {
		a.ImageURL = r.ImageURL
	}
	return a
}

// Handoff is the in-memory state passed from the landing flow to the
// article flow. The analysis fields are flattened next to fromUpload when
// serialized.
type Handoff struct {
	// ImageURL is a locally addressable reference to the uploaded image.
	ImageURL string `json:"imageUrl" yaml:"imageUrl"`

	// FromUpload tells the article flow to reset its own local state.
	FromUpload bool `json:"fromUpload" yaml:"fromUpload"`

	// LocalImage is the filesystem path behind ImageURL.
	LocalImage string `json:"-" yaml:"-"`

	ArticlePayload `yaml:",inline"`
}
