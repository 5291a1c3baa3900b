package models

// RawPayload is the JSON object returned by the vision model, before normalization.
type RawPayload []byte

// Metadata is attached verbatim to every record extracted from one image.
type Metadata map[string]any

// ExtractionInput is one uploaded image and what the caller knows about it.
type ExtractionInput struct {
	Image     []byte
	ImagePath *string
	Metadata  Metadata
}

// ExtractionResult is the outcome of one pipeline run. Success is false for
// the soft "nothing found" outcome.
type ExtractionResult struct {
	Success  bool
	Products []*ProductPrice
	Count    int
	Message  string
}

type ExtractionResponse struct {
	Success           bool                   `json:"success"`
	ExtractedProducts []ProductPriceResponse `json:"extracted_products"`
	Count             int                    `json:"count"`
	Message           string                 `json:"message"`
}

func (r *ExtractionResult) ToResponse() ExtractionResponse {
	return ExtractionResponse{
		Success:           r.Success,
		ExtractedProducts: ToResponses(r.Products),
		Count:             r.Count,
		Message:           r.Message,
	}
}

// EmptyExtractionResult is the unsuccessful outcome with no products.
func EmptyExtractionResult(message string) *ExtractionResult {
	return &ExtractionResult{
		Success:  false,
		Products: []*ProductPrice{},
		Count:    0,
		Message:  message,
	}
}
