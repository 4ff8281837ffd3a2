package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"budgetbook/internal/core"
)

// Message types carried in Envelope.Type.
const (
	TypeRecordCreated = "record.created"
	TypeRecordDeleted = "record.deleted"
	TypePeriodClosed  = "period.closed"
)

// Envelope wraps every message published on the exchange.
type Envelope struct {
	ID        uuid.UUID       `json:"id"`
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// RecordMessage is the payload of record.created and record.deleted.
// Deletions only carry the ID.
type RecordMessage struct {
	ID          int64     `json:"id"`
	Type        string    `json:"type,omitempty"`
	Date        time.Time `json:"date,omitempty"`
	AmountCents int64     `json:"amount_cents,omitempty"`
	Category    string    `json:"category,omitempty"`
}

type CategoryTotal struct {
	Name        string `json:"name"`
	AmountCents int64  `json:"amount_cents"`
}

// PeriodClosedMessage is the summary of a budget period that has ended.
type PeriodClosedMessage struct {
	BudgetID       uuid.UUID       `json:"budget_id"`
	BudgetName     string          `json:"budget_name"`
	Kind           string          `json:"kind"`
	Start          time.Time       `json:"start"`
	End            time.Time       `json:"end"`
	Title          string          `json:"title"`
	IncomeCents    int64           `json:"income_cents"`
	SpentCents     int64           `json:"spent_cents"`
	LimitCents     int64           `json:"limit_cents"`
	RemainingCents int64           `json:"remaining_cents"`
	Overspent      bool            `json:"overspent"`
	ByCategory     []CategoryTotal `json:"by_category,omitempty"`
}

// NewEnvelope marshals payload into a fresh envelope of the given type.
func NewEnvelope(msgType string, payload any) (*Envelope, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", msgType, err)
	}
	return &Envelope{
		ID:        uuid.New(),
		Type:      msgType,
		Timestamp: time.Now().UTC(),
		Payload:   body,
	}, nil
}

func (e *Envelope) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// Decode unmarshals the payload into v.
func (e *Envelope) Decode(v any) error {
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", e.Type, err)
	}
	return nil
}

func EnvelopeFromJSON(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	if env.Type == "" {
		return nil, fmt.Errorf("envelope without type")
	}
	return &env, nil
}

func NewRecordMessage(r core.Record) RecordMessage {
	return RecordMessage{
		ID:          r.ID,
		Type:        string(r.Type),
		Date:        r.Date,
		AmountCents: r.Amount.Cents,
		Category:    r.Category,
	}
}

func NewPeriodClosedMessage(s core.PeriodSummary) PeriodClosedMessage {
	msg := PeriodClosedMessage{
		BudgetID:       s.BudgetID,
		BudgetName:     s.BudgetName,
		Kind:           string(s.Kind),
		Start:          s.Range.Start,
		End:            s.Range.End,
		Title:          s.Title,
		IncomeCents:    s.Income.Cents,
		SpentCents:     s.Spent.Cents,
		LimitCents:     s.Limit.Cents,
		RemainingCents: s.Remaining.Cents,
		Overspent:      s.Overspent,
	}
	for _, c := range s.ByCategory {
		msg.ByCategory = append(msg.ByCategory, CategoryTotal{Name: c.Name, AmountCents: c.Amount.Cents})
	}
	return msg
}

// Summary converts the message back into the domain summary.
func (m PeriodClosedMessage) Summary() core.PeriodSummary {
	s := core.PeriodSummary{
		BudgetID:   m.BudgetID,
		BudgetName: m.BudgetName,
		Kind:       core.PeriodKind(m.Kind),
		Range:      core.DateRange{Start: m.Start, End: m.End},
		Title:      m.Title,
		Income:     core.Money{Cents: m.IncomeCents},
		Spent:      core.Money{Cents: m.SpentCents},
		Limit:      core.Money{Cents: m.LimitCents},
		Remaining:  core.Money{Cents: m.RemainingCents},
		Overspent:  m.Overspent,
	}
	for _, c := range m.ByCategory {
		s.ByCategory = append(s.ByCategory, core.CategoryAmount{Name: c.Name, Amount: core.Money{Cents: c.AmountCents}})
	}
	return s
}
