// Package reports implements the report entry form shared by the create and
// edit pages. The form owns no state: values live in caller-owned Fields and
// every side effect goes through caller-supplied handlers.
package reports

import (
	"context"
	"errors"
	"fmt"
)

const (
	DefaultHeading = "New Report"
	BusyLabel      = "Запазване..."

	FieldTitle   = "title"
	FieldContent = "content"
)

var (
	// ErrRequired is returned by Submit when title or content is blank.
	ErrRequired = errors.New("title and content are required")
	// ErrBusy is returned by Submit while the owner's loading flag is set.
	ErrBusy = errors.New("form is busy")
	// ErrNoRecord is returned by Delete on a form without a record id.
	ErrNoRecord = errors.New("form has no record to delete")
)

type Handler func(ctx context.Context) error

type Props struct {
	OnSubmit Handler
	// OnDelete is only offered when ID is set.
	OnDelete Handler
	Title    *Field
	Content  *Field
	Loading  *Flag
	// Heading defaults to DefaultHeading.
	Heading     string
	SubmitLabel string
	ID          string
}

type Form struct {
	props Props
}

func NewForm(p Props) *Form {
	if p.Heading == "" {
		p.Heading = DefaultHeading
	}
	if p.Title == nil {
		p.Title = NewField("")
	}
	if p.Content == nil {
		p.Content = NewField("")
	}
	if p.Loading == nil {
		p.Loading = &Flag{}
	}
	return &Form{props: p}
}

// Input writes value into the field named by name.
func (f *Form) Input(name, value string) error {
	switch name {
	case FieldTitle:
		f.props.Title.Set(value)
	case FieldContent:
		f.props.Content.Set(value)
	default:
		return fmt.Errorf("unknown report field %q", name)
	}
	return nil
}

// Submit invokes the submit handler once both fields are non-empty, the same
// rule as the inputs' required attribute. Handler
// errors are returned unchanged; the owner decides how to surface them.
func (f *Form) Submit(ctx context.Context) error {
	if f.props.Loading.Value() {
		return ErrBusy
	}
	if f.props.Title.Value() == "" || f.props.Content.Value() == "" {
		return ErrRequired
	}
	if f.props.OnSubmit == nil {
		return nil
	}
	return f.props.OnSubmit(ctx)
}

// Delete calls the delete handler directly. Unlike the garden list there is no
// confirmation step here; owners wanting one must ask before calling.
func (f *Form) Delete(ctx context.Context) error {
	if f.props.ID == "" {
		return ErrNoRecord
	}
	if f.props.OnDelete == nil {
		return nil
	}
	return f.props.OnDelete(ctx)
}

// View is the render model for the form template.
type View struct {
	Heading     string
	Title       string
	Content     string
	ButtonLabel string
	// BusyLabel replaces ButtonLabel in the browser while a request is in flight.
	BusyLabel  string
	Busy       bool
	ShowDelete bool
	ID         string
	// Error is left for the owner to fill in after a failed handler.
	Error string
}

func (f *Form) View() View {
	busy := f.props.Loading.Value()
	label := f.props.SubmitLabel
	if busy {
		label = BusyLabel
	}
	return View{
		Heading:     f.props.Heading,
		Title:       f.props.Title.Value(),
		Content:     f.props.Content.Value(),
		ButtonLabel: label,
		BusyLabel:   BusyLabel,
		Busy:        busy,
		ShowDelete:  f.props.ID != "",
		ID:          f.props.ID,
	}
}
