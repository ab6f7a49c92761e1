package dto

import "encoding/json"

// SubmissionListQuery is bound from the query string of the listing routes.
type SubmissionListQuery struct {
	Status   string `form:"status"    validate:"omitempty,oneof=sent failed"`
	TenantID string `form:"tenant_id"` // admin listing only
	Page     int    `form:"page,default=1"   validate:"min=1"`
	Limit    int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// SubmissionResponse is one row of the submission history.
type SubmissionResponse struct {
	ID                    string  `json:"id"`
	TenantID              string  `json:"tenant_id"`
	LegalEntityID         int64   `json:"legal_entity_id"`
	RecipientIdentifierID int64   `json:"recipient_peppol_identifier_id"`
	DocumentType          string  `json:"document_type"`
	DocumentNumber        string  `json:"document_number"`
	Status                string  `json:"status"`
	GatewayGUID           *string `json:"gateway_guid,omitempty"`
	Error                 *string `json:"error,omitempty"`
	CreatedAt             string  `json:"created_at"`
}

// SubmissionDetailResponse adds the stored XML and the raw gateway reply.
type SubmissionDetailResponse struct {
	SubmissionResponse
	UBLXML          string          `json:"ubl_xml"`
	GatewayResponse json.RawMessage `json:"gateway_response,omitempty"`
}

type SubmissionListResponse struct {
	Data       []SubmissionResponse `json:"data"`
	Total      int64                `json:"total"`
	Page       int                  `json:"page"`
	Limit      int                  `json:"limit"`
	TotalPages int                  `json:"total_pages"`
}
