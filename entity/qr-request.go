package entity

import (
	"fmt"
	"net/http"
	"qrlink/lib/validate"
	"strings"
)

type CreateRequest struct {
	TargetURL string `json:"target_url" validate:"required,http_url"`
	Name      string `json:"name,omitempty" validate:"omitempty,max=128"`
}

func (c *CreateRequest) Bind(_ *http.Request) error {
	return c.Validate()
}

func (c *CreateRequest) Validate() error {
	c.TargetURL = strings.TrimSpace(c.TargetURL)
	c.Name = strings.TrimSpace(c.Name)
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

// BulkRequest is rejected as a whole when any item is malformed
type BulkRequest struct {
	Items []*CreateRequest `json:"items" validate:"required,min=1,max=100,dive"`
}

func (b *BulkRequest) Bind(_ *http.Request) error {
	return b.Validate()
}

func (b *BulkRequest) Validate() error {
	for i, item := range b.Items {
		if item == nil {
			return fmt.Errorf("%w: items[%d] is null", ErrInvalidInput, i)
		}
		item.TargetURL = strings.TrimSpace(item.TargetURL)
		item.Name = strings.TrimSpace(item.Name)
	}
	if err := validate.Struct(b); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

// UpdateRequest partial update; a null value counts as absent
type UpdateRequest struct {
	Name      Optional[string] `json:"name"`
	TargetURL Optional[string] `json:"target_url"`
	IsActive  Optional[bool]   `json:"is_active"`
}

func (u *UpdateRequest) Bind(_ *http.Request) error {
	return u.Validate()
}

func (u *UpdateRequest) Validate() error {
	if u.Name.Set {
		u.Name.Value = strings.TrimSpace(u.Name.Value)
		if err := validate.Var(u.Name.Value, "required,max=128"); err != nil {
			return fmt.Errorf("%w: name %v", ErrInvalidInput, err)
		}
	}
	if u.TargetURL.Set {
		u.TargetURL.Value = strings.TrimSpace(u.TargetURL.Value)
		if err := validate.Var(u.TargetURL.Value, "required,http_url"); err != nil {
			return fmt.Errorf("%w: target_url %v", ErrInvalidInput, err)
		}
	}
	return nil
}

func (u *UpdateRequest) Empty() bool {
	return !u.Name.Set && !u.TargetURL.Set && !u.IsActive.Set
}

// Fields only the fields present in the request, keyed by stored field name
func (u *UpdateRequest) Fields() map[string]interface{} {
	fields := make(map[string]interface{})
	if u.Name.Set {
		fields["name"] = u.Name.Value
	}
	if u.TargetURL.Set {
		fields["target_url"] = u.TargetURL.Value
	}
	if u.IsActive.Set {
		fields["is_active"] = u.IsActive.Value
	}
	return fields
}

type UpdateResult struct {
	Ok      bool                   `json:"ok"`
	Code    string                 `json:"code"`
	Updated map[string]interface{} `json:"updated"`
}

type DeleteResult struct {
	Ok      bool   `json:"ok"`
	Deleted string `json:"deleted"`
}

// BulkFailure an accepted item that could not be stored;
// Error holds a response code, the cause stays in Err and the log
type BulkFailure struct {
	Index int    `json:"index"`
	Error string `json:"error"`
	Err   error  `json:"-"`
}

type BulkResult struct {
	Count  int            `json:"count"`
	Items  []*QRCode      `json:"items"`
	Failed []*BulkFailure `json:"failed,omitempty"`
}
