package doctor

import (
	"context"
	"fmt"

	"github.com/hay-kot/postbox/internal/core/message"
)

// StoreCheck verifies that the message store can be read and is well formed.
type StoreCheck struct {
	store    message.Store
	location string
}

// NewStoreCheck creates a check over an opened store. location is shown in
// the report.
func NewStoreCheck(store message.Store, location string) *StoreCheck {
	return &StoreCheck{store: store, location: location}
}

func (c *StoreCheck) Name() string {
	return "Message Store"
}

func (c *StoreCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	res := c.store.Load(ctx)
	switch {
	case res.OK():
		result.Items = append(result.Items, CheckItem{
			Label:  "Readable",
			Status: StatusPass,
			Detail: c.location,
		})
		result.Items = append(result.Items, CheckItem{
			Label:  "Messages",
			Status: StatusPass,
			Detail: fmt.Sprintf("%d stored", len(res.Document)),
		})
	case res.Corrupt():
		result.Items = append(result.Items, CheckItem{
			Label:   "Well formed",
			Status:  StatusWarn,
			Detail:  "document is corrupted; the next message replaces it",
			Fixable: true,
		})
	default:
		result.Items = append(result.Items, CheckItem{
			Label:  "Readable",
			Status: StatusFail,
			Detail: res.Err.Error(),
		})
	}

	return result
}
