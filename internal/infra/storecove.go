package infra

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"peppolsheet/internal/ubl"
)

// maxErrorBody caps how much of a gateway error response is kept.
const maxErrorBody = 4 << 10

// DocumentSubmission is one UBL document to be routed over PEPPOL by StoreCove.
type DocumentSubmission struct {
	LegalEntityID int64 // StoreCove legal entity id of the sender
	Receiver      ubl.EndpointID
	DocumentType  ubl.DocumentType
	UBLXML        string
}

// SubmissionResult is StoreCove's acknowledgement. Raw keeps the full body for
// the submission record.
type SubmissionResult struct {
	GUID string          `json:"guid"`
	Raw  json.RawMessage `json:"-"`
}

// GatewayError is a non-2xx response from StoreCove.
type GatewayError struct {
	StatusCode int
	Body       string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("storecove: gateway returned %d: %s", e.StatusCode, e.Body)
}

// IsGatewayOutage reports whether err means the gateway itself is unhealthy:
// transport errors, timeouts, 429 and 5xx. A 4xx rejection of one document
// says nothing about the gateway.
func IsGatewayOutage(err error) bool {
	if err == nil {
		return false
	}
	var gw *GatewayError
	if errors.As(err, &gw) {
		return gw.StatusCode >= http.StatusInternalServerError || gw.StatusCode == http.StatusTooManyRequests
	}
	return !errors.Is(err, context.Canceled)
}

type storecoveRequest struct {
	LegalEntityID int64            `json:"legalEntityId"`
	Routing       storecoveRouting `json:"routing"`
	Document      storecoveDoc     `json:"document"`
}

type storecoveRouting struct {
	EIdentifiers []storecoveEIdentifier `json:"eIdentifiers"`
}

type storecoveEIdentifier struct {
	Scheme string `json:"scheme"`
	ID     string `json:"id"`
}

type storecoveDoc struct {
	DocumentType    string           `json:"documentType"`
	RawDocumentData storecoveRawData `json:"rawDocumentData"`
}

type storecoveRawData struct {
	Document      string `json:"document"`
	Parse         bool   `json:"parse"`
	ParseStrategy string `json:"parseStrategy"`
}

// StorecoveClient submits documents to the StoreCove REST API. Calls go
// through the circuit breaker and are never retried here; the caller decides.
type StorecoveClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	cb         *CircuitBreaker
}

func NewStorecoveClient(baseURL, apiKey string, timeout time.Duration, cb *CircuitBreaker) *StorecoveClient {
	if cb == nil {
		cb = NewCircuitBreaker(DefaultCBConfig())
	}
	return &StorecoveClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		cb:         cb,
	}
}

// BreakerState exposes the circuit breaker for /health.
func (c *StorecoveClient) BreakerState() CBState { return c.cb.State() }

// gatewayDocumentType maps our document types to StoreCove's: credit notes
// travel as "invoice" and are told apart by the UBL root element.
func gatewayDocumentType(t ubl.DocumentType) string {
	if t == ubl.TypeOrder {
		return "order"
	}
	return "invoice"
}

// SendDocument posts s to /document_submissions and returns the guid.
func (c *StorecoveClient) SendDocument(ctx context.Context, s DocumentSubmission) (*SubmissionResult, error) {
	payload := storecoveRequest{
		LegalEntityID: s.LegalEntityID,
		Routing: storecoveRouting{EIdentifiers: []storecoveEIdentifier{
			{Scheme: s.Receiver.SchemeID, ID: s.Receiver.Value},
		}},
		Document: storecoveDoc{
			DocumentType: gatewayDocumentType(s.DocumentType),
			RawDocumentData: storecoveRawData{
				Document:      base64.StdEncoding.EncodeToString([]byte(s.UBLXML)),
				Parse:         true,
				ParseStrategy: "ubl",
			},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("storecove: marshal payload: %w", err)
	}

	var result *SubmissionResult
	err = c.cb.Execute(func() error {
		var sendErr error
		result, sendErr = c.post(ctx, "/document_submissions", body)
		return sendErr
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (c *StorecoveClient) post(ctx context.Context, path string, body []byte) (*SubmissionResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("storecove: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("storecove: gateway unreachable: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("storecove: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if len(raw) > maxErrorBody {
			raw = raw[:maxErrorBody]
		}
		return nil, &GatewayError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var result SubmissionResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("storecove: decode response: %w", err)
	}
	result.Raw = raw
	return &result, nil
}
