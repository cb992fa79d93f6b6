package viewstate

import (
	"net/url"
	"strconv"

	"github.com/tylerwhitlock50/month-end-close-manager-sub001/internal/task"
)

// Query encodes the shareable part of the view state. Back/forward
// navigation and view links round-trip through this form. The period is
// deliberately absent: it is a process-wide selection, not per-view state.
func (c *Controller) Query() url.Values {
	v := url.Values{}
	switch c.quick {
	case QuickMine:
		v.Set("mine", "1")
	case QuickReview:
		v.Set("review", "1")
	}
	if c.status != "" {
		v.Set("status", string(c.status))
	}
	if c.highlight != 0 {
		v.Set("highlight", strconv.FormatInt(c.highlight, 10))
	}
	return v
}

// QueryString returns the encoded query, "" for the default view.
func (c *Controller) QueryString() string {
	return c.Query().Encode()
}

// Apply replaces the shareable view state with the decoded one. Unknown
// status values are ignored. The remembered-status slot cannot survive a
// round-trip, so leaving My Reviews after an Apply clears the status filter.
func (c *Controller) Apply(v url.Values) {
	switch {
	case v.Get("review") == "1":
		c.quick = QuickReview
	case v.Get("mine") == "1":
		c.quick = QuickMine
	default:
		c.quick = QuickNone
	}
	c.remembered = ""

	next := task.Status("")
	if raw := v.Get("status"); raw != "" {
		if s, err := task.ParseStatus(raw); err == nil {
			next = s
		}
	}
	if next == "" && c.quick == QuickReview {
		next = task.StatusReview
	}
	if next != c.status {
		c.status = next
		c.sel.Clear()
	}

	c.highlight = 0
	if raw := v.Get("highlight"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
			c.highlight = id
		}
	}
}

// ApplyString parses and applies an encoded query, as passed to --view.
func (c *Controller) ApplyString(raw string) error {
	v, err := url.ParseQuery(raw)
	if err != nil {
		return err
	}
	c.Apply(v)
	return nil
}
