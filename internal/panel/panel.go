// Package panel holds the form logic shared by every entity tab: listing,
// selection, editing and the create/save/delete round trips.
package panel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"busmanager/internal/client"
	"busmanager/internal/gateway/wire"
	"busmanager/internal/utils"
)

type State int

const (
	Idle State = iota
	Loaded
	Submitting
)

func (s State) String() string {
	switch s {
	case Loaded:
		return "loaded"
	case Submitting:
		return "submitting"
	default:
		return "idle"
	}
}

var (
	ErrBusy  = errors.New("panel: operation in flight")
	ErrStale = errors.New("panel: stale response discarded")
)

// Alert is the single dismissible message a panel shows.
type Alert struct {
	Message string
}

func (a *Alert) Error() string { return a.Message }

func ServerMessage(err error) string {
	return "Ошибка при обращении к серверу: " + err.Error()
}

type Item struct {
	ID    string
	Label string
}

// Snapshot is a copy of the panel state, safe to read without the lock.
type Snapshot struct {
	Schema     Schema
	Items      []Item
	SelectedID string
	// Record is nil when there is no edit buffer.
	Record map[string]string
	// Info holds read-only fields of the fetched record (Geohash).
	Info  map[string]string
	State State
	Alert string
}

type Panel struct {
	schema Schema
	gw     client.Gateway

	mu     sync.Mutex
	items  []Item
	id     string
	record map[string]string
	info   map[string]string
	state  State
	alert  string
	token  uint64
}

func New(s Schema, gw client.Gateway) *Panel {
	return &Panel{schema: s, gw: gw}
}

func (p *Panel) Schema() Schema { return p.schema }

// LoadAll replaces the list. "" and "null" both mean no records.
func (p *Panel) LoadAll(ctx context.Context) error {
	items, err := p.fetchItems(ctx)
	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		return p.raise("load_all", err)
	}
	p.items = items
	return nil
}

// Select fetches one record into the edit buffer. Only the latest Select
// may land; earlier responses return ErrStale and change nothing.
func (p *Panel) Select(ctx context.Context, id string) error {
	p.mu.Lock()
	if p.state == Submitting {
		p.mu.Unlock()
		return ErrBusy
	}
	p.token++
	tok := p.token
	p.mu.Unlock()

	raw, err := p.gw.GetByID(ctx, id)

	p.mu.Lock()
	defer p.mu.Unlock()
	if tok != p.token {
		return ErrStale
	}
	if err != nil {
		return p.raise("select", err)
	}
	if msg := wire.ErrorOf(raw); msg != "" {
		return p.raise("select", verbatim(msg))
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(raw), &rec); err != nil || rec == nil {
		if err == nil {
			err = fmt.Errorf("empty record %s", id)
		}
		return p.raise("select", err)
	}
	p.id = stringOf(rec["ID"])
	p.record, p.info = p.toBuffer(rec)
	p.state = Loaded
	p.alert = ""
	return nil
}

// New starts a blank, unsaved edit buffer.
func (p *Panel) New() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == Submitting {
		return
	}
	p.token++
	p.id = ""
	p.record = make(map[string]string, len(p.schema.Fields))
	for _, f := range p.schema.Fields {
		p.record[f.Key] = ""
	}
	p.info = nil
	p.state = Loaded
}

// EditField merges one value into the buffer without validating it. It
// reports false when there is no buffer or the field is unknown.
func (p *Panel) EditField(key, value string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.record == nil || p.state == Submitting {
		return false
	}
	if _, ok := p.schema.Field(key); !ok {
		return false
	}
	p.record[key] = value
	return true
}

// Create submits the buffer as a new record, dropping any ID it carries.
func (p *Panel) Create(ctx context.Context) error {
	payload, err := p.begin("create", false)
	if err != nil {
		return err
	}
	return p.finish(ctx, "create", func() (string, error) { return p.gw.Add(ctx, payload) })
}

// Save submits the buffer as an update of the selected record.
func (p *Panel) Save(ctx context.Context) error {
	payload, err := p.begin("save", true)
	if err != nil {
		return err
	}
	return p.finish(ctx, "save", func() (string, error) { return p.gw.UpdateByID(ctx, payload) })
}

// Delete removes the selected record. Nothing is sent without an ID.
func (p *Panel) Delete(ctx context.Context) error {
	p.mu.Lock()
	if p.state == Submitting {
		p.mu.Unlock()
		return ErrBusy
	}
	if p.id == "" {
		defer p.mu.Unlock()
		return p.warn(NoSelectionMessage)
	}
	id := p.id
	p.state = Submitting
	p.mu.Unlock()
	return p.finish(ctx, "delete", func() (string, error) { return p.gw.DeleteByID(ctx, id) })
}

func (p *Panel) DismissAlert() {
	p.mu.Lock()
	p.alert = ""
	p.mu.Unlock()
}

func (p *Panel) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Snapshot{
		Schema:     p.schema,
		Items:      append([]Item(nil), p.items...),
		SelectedID: p.id,
		Record:     copyMap(p.record),
		Info:       copyMap(p.info),
		State:      p.state,
		Alert:      p.alert,
	}
}

// begin validates the buffer and builds the submission payload. On
// success the panel is left in Submitting.
func (p *Panel) begin(action string, needID bool) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == Submitting {
		return "", ErrBusy
	}
	if p.record == nil || (needID && p.id == "") {
		return "", p.warn(NoSelectionMessage)
	}
	if res := Validate(p.record, p.schema); !res.Valid {
		return "", p.warn(res.Message)
	}
	id := ""
	if needID {
		id = p.id
	}
	payload, err := p.payload(id)
	if err != nil {
		return "", p.raise(action, err)
	}
	p.state = Submitting
	return payload, nil
}

// finish runs the gateway call, then reloads the list and clears the
// selection. Failures restore Loaded and leave the list alone.
func (p *Panel) finish(ctx context.Context, action string, call func() (string, error)) error {
	raw, err := call()
	if err == nil {
		if msg := wire.ErrorOf(raw); msg != "" {
			err = verbatim(msg)
		}
	}
	if err != nil {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.state = Loaded
		return p.raise(action, err)
	}
	utils.LogEvent("", "panel_"+p.schema.Entity.String(), action, "ok")

	items, loadErr := p.fetchItems(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.token++
	p.id = ""
	p.record = nil
	p.info = nil
	p.state = Idle
	p.alert = ""
	if loadErr != nil {
		return p.raise("load_all", loadErr)
	}
	p.items = items
	return nil
}

func (p *Panel) fetchItems(ctx context.Context) ([]Item, error) {
	raw, err := p.gw.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return []Item{}, nil
	}
	if msg := wire.ErrorOf(raw); msg != "" {
		return nil, verbatim(msg)
	}
	var recs []map[string]any
	if err := json.Unmarshal([]byte(raw), &recs); err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(recs))
	for _, rec := range recs {
		items = append(items, Item{ID: stringOf(rec["ID"]), Label: p.label(rec)})
	}
	return items, nil
}

func (p *Panel) label(rec map[string]any) string {
	var parts []string
	for _, key := range p.schema.ListLabel {
		if v := strings.TrimSpace(stringOf(rec[key])); v != "" {
			parts = append(parts, v)
		}
	}
	if len(parts) == 0 {
		return stringOf(rec["ID"])
	}
	return strings.Join(parts, " ")
}

// payload is built fresh each time; the buffer is never touched.
func (p *Panel) payload(id string) (string, error) {
	out := make(map[string]any, len(p.schema.Fields)+1)
	if id == "" {
		out["ID"] = nil
	} else {
		out["ID"] = id
	}
	for _, f := range p.schema.Fields {
		v := strings.TrimSpace(p.record[f.Key])
		switch f.Kind {
		case Date:
			if v == "" {
				out[f.Key] = nil
				continue
			}
			s, ok := ToStorageFormat(v)
			if !ok {
				return "", verbatim(DateFormatMessage)
			}
			out[f.Key] = s
		case Number:
			n, err := parseNumber(v)
			if err != nil {
				return "", verbatim(NumberMessage(f.Label))
			}
			out[f.Key] = n
		default:
			out[f.Key] = v
		}
	}
	data, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (p *Panel) toBuffer(rec map[string]any) (map[string]string, map[string]string) {
	buf := make(map[string]string, len(p.schema.Fields))
	for _, f := range p.schema.Fields {
		v := stringOf(rec[f.Key])
		if f.Kind == Date && v != "" {
			if d, err := ToDisplayFormat(v); err == nil {
				v = d
			}
		}
		buf[f.Key] = v
	}
	var info map[string]string
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, ok := p.schema.Field(k); ok || k == "ID" {
			continue
		}
		if v := stringOf(rec[k]); v != "" {
			if info == nil {
				info = map[string]string{}
			}
			info[k] = v
		}
	}
	return buf, info
}

// raise records err as the alert. Caller holds the lock.
func (p *Panel) raise(action string, err error) error {
	utils.LogFailure("", "panel_"+p.schema.Entity.String(), action, err)
	msg := err.Error()
	var v verbatim
	if !errors.As(err, &v) {
		msg = ServerMessage(err)
	}
	return p.warn(msg)
}

func (p *Panel) warn(msg string) error {
	p.alert = msg
	return &Alert{Message: msg}
}

// verbatim marks messages shown as-is: gateway Error payloads and
// form checks. Anything else is reported as a server failure.
type verbatim string

func (v verbatim) Error() string { return string(v) }

func stringOf(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

func copyMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
