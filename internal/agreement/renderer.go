// Package agreement renders the insertion-order agreement a campaign owner
// signs before payment. Documents are Liquid templates so the default can
// be overridden per deployment without a rebuild.
package agreement

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/osteele/liquid"

	"github.com/ignite/insert-planner/internal/booking"
	"github.com/ignite/insert-planner/internal/domain"
	"github.com/ignite/insert-planner/internal/pricing"
)

// Renderer renders agreement documents. Safe for concurrent use; parsed
// templates are cached by source.
type Renderer struct {
	engine *liquid.Engine
	mu     sync.Mutex
	cache  map[string]*liquid.Template
}

// NewRenderer creates a renderer with the money and quantity filters the
// default template uses.
func NewRenderer() *Renderer {
	engine := liquid.NewEngine()
	engine.RegisterFilter("money", func(v float64) string {
		return fmt.Sprintf("$%s", formatMoney(v))
	})
	engine.RegisterFilter("qty", func(v int) string {
		return booking.FormatQuantity(v)
	})
	return &Renderer{engine: engine, cache: make(map[string]*liquid.Template)}
}

// Input bundles everything the agreement shows.
type Input struct {
	Campaign *domain.Campaign
	Report   pricing.Report
	Now      time.Time
}

// Render produces the agreement HTML from the default template.
func (r *Renderer) Render(in Input) (string, error) {
	return r.RenderTemplate(defaultTemplate, in)
}

// RenderTemplate renders an explicit template source.
func (r *Renderer) RenderTemplate(source string, in Input) (string, error) {
	if in.Campaign == nil {
		return "", fmt.Errorf("campaign is required")
	}
	tpl, err := r.parse(source)
	if err != nil {
		return "", err
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	var lines []map[string]interface{}
	extended := false
	for _, p := range in.Report.Programs {
		if p.TotalQuantity == 0 {
			continue
		}
		if p.DurationDisclaimer {
			extended = true
		}
		lines = append(lines, map[string]interface{}{
			"program_name": displayName(p),
			"quantity":     p.TotalQuantity,
			"media_cost":   p.MediaCost,
			"print_cost":   p.PrintCost,
			"freight_cost": p.FreightCost,
			"total":        p.Total,
		})
	}

	bindings := map[string]interface{}{
		"campaign_name":        in.Campaign.Name,
		"advertiser":           in.Campaign.Advertiser,
		"date":                 now.Format("January 2, 2006"),
		"programs":             lines,
		"aggregate_quantity":   in.Report.AggregateQuantity,
		"print_unit_price":     in.Report.PrintUnitPrice,
		"campaign_total":       in.Report.CampaignTotal,
		"extended_fulfillment": extended,
	}

	out, err := tpl.RenderString(bindings)
	if err != nil {
		return "", fmt.Errorf("render agreement: %w", err)
	}
	return out, nil
}

func (r *Renderer) parse(source string) (*liquid.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if tpl, ok := r.cache[source]; ok {
		return tpl, nil
	}
	tpl, err := r.engine.ParseString(source)
	if err != nil {
		return nil, fmt.Errorf("parse agreement template: %w", err)
	}
	r.cache[source] = tpl
	return tpl, nil
}

func displayName(p pricing.ProgramLine) string {
	if p.ProgramName != "" {
		return p.ProgramName
	}
	return p.ChannelID
}

func formatMoney(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	dot := strings.Index(s, ".")
	whole, frac := s[:dot], s[dot:]
	neg := strings.HasPrefix(whole, "-")
	if neg {
		whole = whole[1:]
	}
	var b strings.Builder
	for i, digit := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}
	out := b.String() + frac
	if neg {
		return "-" + out
	}
	return out
}
