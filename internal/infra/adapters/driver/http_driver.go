package driver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"serial-job-applier/internal/config"
	"serial-job-applier/internal/domain/model"
	"serial-job-applier/internal/domain/ports/adapter"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.BrowserDriver = (*HTTPDriver)(nil)

// HTTPDriver talks JSON to the browser-automation sidecar. The sidecar owns
// the actual browser, selectors and anti-detection behavior; this adapter is
// a thin transport.
type HTTPDriver struct {
	base   string
	client *http.Client
}

func NewHTTPDriver(cfg *config.DriverConfig) *HTTPDriver {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &HTTPDriver{
		base:   cfg.BaseURL,
		client: &http.Client{Timeout: timeout},
	}
}

func (d *HTTPDriver) Authenticate(ctx context.Context, creds model.Credentials) error {
	return d.post(ctx, "/session/authenticate", creds, nil)
}

func (d *HTTPDriver) Navigate(ctx context.Context, target string) error {
	body := struct {
		URL string `json:"url"`
	}{URL: target}
	return d.post(ctx, "/session/navigate", body, nil)
}

func (d *HTTPDriver) ListVisibleFields(ctx context.Context) ([]model.FormField, error) {
	var out struct {
		Fields []model.FormField `json:"fields"`
	}
	if err := d.get(ctx, "/form/fields", &out); err != nil {
		return nil, err
	}
	return out.Fields, nil
}

func (d *HTTPDriver) SetValue(ctx context.Context, fieldID, value string) error {
	body := struct {
		FieldID string `json:"field_id"`
		Value   string `json:"value"`
	}{FieldID: fieldID, Value: value}
	return d.post(ctx, "/form/value", body, nil)
}

func (d *HTTPDriver) SubmitOrAdvance(ctx context.Context) (adapter.AdvanceOutcome, error) {
	var out struct {
		Outcome string `json:"outcome"`
	}
	if err := d.post(ctx, "/form/advance", struct{}{}, &out); err != nil {
		return adapter.OutcomeBlocked, err
	}
	switch o := adapter.AdvanceOutcome(out.Outcome); o {
	case adapter.OutcomeAdvanced, adapter.OutcomeSubmitted, adapter.OutcomeBlocked:
		return o, nil
	default:
		return adapter.OutcomeBlocked, fmt.Errorf("driver returned unknown outcome %q", out.Outcome)
	}
}

func (d *HTTPDriver) SearchJobs(ctx context.Context, search model.JobSearch) ([]model.JobPosting, error) {
	var out struct {
		Jobs []model.JobPosting `json:"jobs"`
	}
	if err := d.post(ctx, "/jobs/search", search, &out); err != nil {
		return nil, err
	}
	return out.Jobs, nil
}

func (d *HTTPDriver) ListEmployees(ctx context.Context, companyURL, companyName string, limit int) ([]model.Candidate, error) {
	body := struct {
		CompanyURL  string `json:"company_url"`
		CompanyName string `json:"company_name"`
		Limit       int    `json:"limit"`
	}{CompanyURL: companyURL, CompanyName: companyName, Limit: limit}
	var out struct {
		Employees []model.Candidate `json:"employees"`
	}
	if err := d.post(ctx, "/people/employees", body, &out); err != nil {
		return nil, err
	}
	return out.Employees, nil
}

func (d *HTTPDriver) MessageAffordance(ctx context.Context, profileRef string) (adapter.MessageAffordance, error) {
	var out struct {
		Affordance string `json:"affordance"`
	}
	path := "/people/affordance?profile=" + url.QueryEscape(profileRef)
	if err := d.get(ctx, path, &out); err != nil {
		return adapter.AffordanceNone, err
	}
	switch a := adapter.MessageAffordance(out.Affordance); a {
	case adapter.AffordanceDirectMessage, adapter.AffordanceConnectionRequest, adapter.AffordanceNone:
		return a, nil
	default:
		return adapter.AffordanceNone, fmt.Errorf("driver returned unknown affordance %q", out.Affordance)
	}
}

func (d *HTTPDriver) SendDirectMessage(ctx context.Context, profileRef, text string) error {
	body := struct {
		Profile string `json:"profile"`
		Text    string `json:"text"`
	}{Profile: profileRef, Text: text}
	return d.post(ctx, "/messages/direct", body, nil)
}

func (d *HTTPDriver) SendConnectionRequest(ctx context.Context, profileRef, note string) error {
	body := struct {
		Profile string `json:"profile"`
		Note    string `json:"note"`
	}{Profile: profileRef, Note: note}
	return d.post(ctx, "/messages/connect", body, nil)
}

func (d *HTTPDriver) post(ctx context.Context, path string, in, out any) error {
	b, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.base+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return d.do(req, out)
}

func (d *HTTPDriver) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.base+path, nil)
	if err != nil {
		return err
	}
	return d.do(req, out)
}

func (d *HTTPDriver) do(req *http.Request, out any) error {
	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("driver %s: http %d: %s", req.URL.Path, resp.StatusCode, bytes.TrimSpace(msg))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
