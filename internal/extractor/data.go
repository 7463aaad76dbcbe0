package extractor

import (
	"net/url"

	"github.com/suscrawl/suscrawl/pkg/failure"
	"golang.org/x/net/html"
)

// ExtractionResult holds the extraction outcome.
// DocumentRoot is the original parsed HTML document.
// ContentNode is the extracted meaningful content node (semantic container).
type ExtractionResult struct {
	DocumentRoot *html.Node
	ContentNode  *html.Node
}

// ContentScoreMultiplier tunes the weighted text-density score the third
// extraction layer uses to pick a content container (§4.11 layer 3).
type ContentScoreMultiplier struct {
	NonWhitespaceDivisor float64
	Paragraphs           float64
	Headings             float64
	CodeBlocks           float64
	ListItems            float64
}

// MeaningfulThreshold gates whether a candidate node counts as real content
// rather than navigation/chrome, shared by every extraction layer.
type MeaningfulThreshold struct {
	MinNonWhitespace    int
	MinHeadings         int
	MinParagraphsOrCode int
	MaxLinkDensity      float64
}

// ExtractParam carries the tunable knobs of the Content Extractor, sourced
// from config (§6) so a crawl can adjust extraction sensitivity without
// recompiling.
type ExtractParam struct {
	BodySpecificityBias  float64
	LinkDensityThreshold float64
	ScoreMultiplier      ContentScoreMultiplier
	Threshold            MeaningfulThreshold
}

// DefaultExtractParam mirrors internal/config's WithDefault values so a
// DomExtractor constructed without an explicit SetExtractParam call still
// behaves sanely.
func DefaultExtractParam() ExtractParam {
	return ExtractParam{
		BodySpecificityBias:  0.75,
		LinkDensityThreshold: 0.80,
		ScoreMultiplier: ContentScoreMultiplier{
			NonWhitespaceDivisor: 50.0,
			Paragraphs:           5.0,
			Headings:             10.0,
			CodeBlocks:           15.0,
			ListItems:            2.0,
		},
		Threshold: MeaningfulThreshold{
			MinNonWhitespace:    50,
			MinHeadings:         0,
			MinParagraphsOrCode: 1,
			MaxLinkDensity:      0.8,
		},
	}
}

// Extractor isolates the main-content subtree of an HTML document, per
// §4.11. SetExtractParam lets the scheduler push config-sourced tuning
// into the extractor once per crawl, ahead of the first Extract call.
type Extractor interface {
	Extract(sourceUrl url.URL, htmlByte []byte) (ExtractionResult, failure.ClassifiedError)
	SetExtractParam(params ExtractParam)
}
