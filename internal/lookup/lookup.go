// Package lookup queries external court and identity registries (DataJud, PJe and a
// CPF registry) for read-only pre-fill data. Unconfigured or failing sources are
// reported per source and never fail the whole lookup.
package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"custody-tracker/config"
	"custody-tracker/pkg/cpf"
)

const (
	SourceDataJud = "datajud"
	SourcePJe     = "pje"

	minProcessDigits = 7
	maxBodyBytes     = 1 << 20
)

var (
	ErrInvalidProcessNumber = errors.New("invalid process number")
	ErrInvalidCPF           = errors.New("invalid CPF, 11 digits required")
	ErrUnknownSource        = errors.New("unknown lookup source")
)

// SourceResult outcome of one source
type SourceResult struct {
	Source  string          `json:"source"`
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// ProcessLookup answer for a process number
type ProcessLookup struct {
	ProcessNumber string          `json:"process_number"`
	Results       []SourceResult  `json:"results"`
	BestResult    json.RawMessage `json:"best_result"`
}

// PersonData identity fields normalised from the CPF registry
type PersonData struct {
	FullName   *string `json:"full_name"`
	MotherName *string `json:"mother_name"`
	BirthDate  *string `json:"birth_date"` // YYYY-MM-DD
}

// CPFLookup answer for a CPF
type CPFLookup struct {
	CPF     string      `json:"cpf"`
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    *PersonData `json:"data"`
}

type endpoint struct {
	baseURL string
	token   string
}

// Client shared HTTP client for all sources
type Client struct {
	http    *http.Client
	sources map[string]endpoint
	cpf     endpoint
	logger  *zap.Logger
}

func New(cfg *config.LookupConfig, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		http: &http.Client{Timeout: timeout},
		sources: map[string]endpoint{
			SourceDataJud: {baseURL: cfg.DataJudURL, token: cfg.DataJudToken},
			SourcePJe:     {baseURL: cfg.PJeURL, token: cfg.PJeToken},
		},
		cpf:    endpoint{baseURL: cfg.CPFURL, token: cfg.CPFToken},
		logger: logger,
	}
}

// LookupProcess queries every requested source concurrently. Results keep the
// requested order; BestResult is the payload of the first successful source.
func (c *Client) LookupProcess(ctx context.Context, number string, sources []string, court string) (*ProcessLookup, error) {
	digits := cpf.Normalize(number)
	if len(digits) < minProcessDigits {
		return nil, ErrInvalidProcessNumber
	}
	if len(sources) == 0 {
		sources = []string{SourceDataJud, SourcePJe}
	}
	for _, s := range sources {
		if _, ok := c.sources[s]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSource, s)
		}
	}

	results := make([]SourceResult, len(sources))
	var g errgroup.Group
	for i, name := range sources {
		g.Go(func() error {
			results[i] = c.querySource(ctx, name, digits, court)
			return nil
		})
	}
	_ = g.Wait()

	out := &ProcessLookup{ProcessNumber: digits, Results: results}
	for _, r := range results {
		if r.Success && hasPayload(r.Data) {
			out.BestResult = r.Data
			break
		}
	}
	return out, nil
}

func (c *Client) querySource(ctx context.Context, name, digits, court string) SourceResult {
	ep := c.sources[name]
	res := SourceResult{Source: name}
	if ep.baseURL == "" {
		res.Message = fmt.Sprintf("%s integration not configured", strings.ToUpper(name))
		return res
	}

	q := url.Values{}
	if court != "" {
		q.Set("tribunal", court)
	}
	body, status, err := c.get(ctx, ep, "/processos/"+digits, q)
	switch {
	case err != nil:
		res.Message = failureMessage(err)
		c.logger.Warn("process lookup failed", zap.String("source", name), zap.Error(err))
	case status == http.StatusNotFound:
		res.Message = "process not found at source"
	case status < 200 || status > 299:
		res.Message = fmt.Sprintf("external lookup failed: HTTP %d", status)
	case !json.Valid(body):
		res.Message = "external lookup returned an invalid payload"
	default:
		res.Success = true
		res.Message = "lookup succeeded"
		res.Data = json.RawMessage(body)
	}
	return res
}

// LookupCPF queries the CPF registry and normalises the identity fields
func (c *Client) LookupCPF(ctx context.Context, raw string) (*CPFLookup, error) {
	digits := cpf.Normalize(raw)
	if len(digits) != 11 {
		return nil, ErrInvalidCPF
	}
	out := &CPFLookup{CPF: digits}
	if c.cpf.baseURL == "" {
		out.Message = "CPF integration not configured"
		return out, nil
	}

	body, status, err := c.get(ctx, c.cpf, "/cpf/"+digits, nil)
	switch {
	case err != nil:
		out.Message = failureMessage(err)
		c.logger.Warn("cpf lookup failed", zap.Error(err))
		return out, nil
	case status == http.StatusNotFound:
		out.Message = "CPF not found at source"
		return out, nil
	case status < 200 || status > 299:
		out.Message = fmt.Sprintf("external CPF lookup failed: HTTP %d", status)
		return out, nil
	}

	var payload map[string]interface{}
	if len(strings.TrimSpace(string(body))) > 0 && string(body) != "null" {
		if err := json.Unmarshal(body, &payload); err != nil {
			out.Message = "external CPF lookup returned an invalid payload"
			return out, nil
		}
	}

	out.Success = true
	out.Message = "CPF lookup succeeded"
	out.Data = &PersonData{
		FullName:   firstString(payload, "nome_completo", "nome"),
		MotherName: firstString(payload, "nome_da_mae", "mae"),
		BirthDate:  NormalizeBirthDate(firstString(payload, "data_nascimento", "nascimento", "dt_nascimento")),
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, ep endpoint, path string, q url.Values) ([]byte, int, error) {
	full := strings.TrimRight(ep.baseURL, "/") + path
	if len(q) > 0 {
		full += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, full, nil)
	if err != nil {
		return nil, 0, err
	}
	if ep.token != "" {
		req.Header.Set("Authorization", "Bearer "+ep.token)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}

func failureMessage(err error) string {
	var ne interface{ Timeout() bool }
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return "external lookup timed out"
	}
	return "external lookup failed: " + err.Error()
}

func hasPayload(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	switch s {
	case "", "null", "{}", "[]", `""`, "false", "0":
		return false
	}
	return true
}

func firstString(m map[string]interface{}, keys ...string) *string {
	for _, k := range keys {
		v, ok := m[k]
		if !ok || v == nil {
			continue
		}
		s := strings.TrimSpace(fmt.Sprint(v))
		if s != "" {
			return &s
		}
	}
	return nil
}

var (
	isoDate = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})`)
	brDate  = regexp.MustCompile(`^(\d{2})/(\d{2})/(\d{4})$`)
)

// NormalizeBirthDate converts ISO (optionally with a time part) or dd/mm/yyyy to YYYY-MM-DD.
// Anything else yields nil.
func NormalizeBirthDate(v *string) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	if m := isoDate.FindStringSubmatch(s); m != nil {
		out := m[1] + "-" + m[2] + "-" + m[3]
		return &out
	}
	if m := brDate.FindStringSubmatch(s); m != nil {
		out := m[3] + "-" + m[2] + "-" + m[1]
		return &out
	}
	return nil
}
