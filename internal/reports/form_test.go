package reports

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInputWritesIntoOwnerFields(t *testing.T) {
	title := NewField("")
	content := NewField("")
	form := NewForm(Props{Title: title, Content: content, SubmitLabel: "Създай"})

	require.NoError(t, form.Input(FieldTitle, "W"))
	assert.Equal(t, "W", title.Value())
	require.NoError(t, form.Input(FieldTitle, "We"))
	assert.Equal(t, "We", title.Value())
	require.NoError(t, form.Input(FieldContent, "Tomatoes ripe"))
	assert.Equal(t, "Tomatoes ripe", content.Value())

	assert.Error(t, form.Input("author", "x"))
}

func TestFieldObserversSeeEveryKeystroke(t *testing.T) {
	title := NewField("")
	var seen []string
	title.OnChange(func(v string) { seen = append(seen, v) })
	form := NewForm(Props{Title: title})

	for _, v := range []string{"a", "ab", "abc"} {
		require.NoError(t, form.Input(FieldTitle, v))
	}

	assert.Equal(t, []string{"a", "ab", "abc"}, seen)
}

func TestObserverMayReadField(t *testing.T) {
	f := NewField("")
	var read string
	f.OnChange(func(string) { read = f.Value() })

	f.Set("x")
	assert.Equal(t, "x", read)
}

func TestSubmitCallsHandler(t *testing.T) {
	calls := 0
	form := NewForm(Props{
		Title:    NewField("Weekly"),
		Content:  NewField("Watered beds"),
		OnSubmit: func(context.Context) error { calls++; return nil },
	})

	require.NoError(t, form.Submit(context.Background()))
	assert.Equal(t, 1, calls)
}

func TestSubmitReturnsHandlerError(t *testing.T) {
	boom := errors.New("backend down")
	form := NewForm(Props{
		Title:    NewField("t"),
		Content:  NewField("c"),
		OnSubmit: func(context.Context) error { return boom },
	})

	assert.ErrorIs(t, form.Submit(context.Background()), boom)
}

func TestSubmitRequiresBothFields(t *testing.T) {
	for _, tc := range []struct {
		name           string
		title, content string
	}{
		{"empty title", "", "c"},
		{"empty content", "t", ""},
		{"both empty", "", ""},
	} {
		t.Run(tc.name, func(t *testing.T) {
			called := false
			form := NewForm(Props{
				Title:    NewField(tc.title),
				Content:  NewField(tc.content),
				OnSubmit: func(context.Context) error { called = true; return nil },
			})

			assert.ErrorIs(t, form.Submit(context.Background()), ErrRequired)
			assert.False(t, called)
		})
	}
}

func TestSubmitWhileLoadingIsRefused(t *testing.T) {
	loading := &Flag{}
	loading.Set(true)
	called := false
	form := NewForm(Props{
		Title:    NewField("t"),
		Content:  NewField("c"),
		Loading:  loading,
		OnSubmit: func(context.Context) error { called = true; return nil },
	})

	assert.ErrorIs(t, form.Submit(context.Background()), ErrBusy)
	assert.False(t, called)
}

func TestDeleteWithIDCallsHandlerWithoutConfirmation(t *testing.T) {
	deleted := 0
	form := NewForm(Props{
		ID:       "r1",
		OnDelete: func(context.Context) error { deleted++; return nil },
	})

	v := form.View()
	assert.True(t, v.ShowDelete)

	require.NoError(t, form.Delete(context.Background()))
	assert.Equal(t, 1, deleted)
}

func TestDeleteWithoutID(t *testing.T) {
	called := false
	form := NewForm(Props{OnDelete: func(context.Context) error { called = true; return nil }})

	assert.False(t, form.View().ShowDelete)
	assert.ErrorIs(t, form.Delete(context.Background()), ErrNoRecord)
	assert.False(t, called)
}

func TestDeleteWithIDButNoHandler(t *testing.T) {
	form := NewForm(Props{ID: "r1"})

	assert.True(t, form.View().ShowDelete)
	assert.NoError(t, form.Delete(context.Background()))
}

func TestViewDefaultsAndBusyLabel(t *testing.T) {
	loading := &Flag{}
	form := NewForm(Props{
		Title:       NewField("Spring"),
		Content:     NewField("Planting"),
		Loading:     loading,
		SubmitLabel: "Запази",
	})

	v := form.View()
	assert.Equal(t, DefaultHeading, v.Heading)
	assert.Equal(t, "Spring", v.Title)
	assert.Equal(t, "Planting", v.Content)
	assert.Equal(t, "Запази", v.ButtonLabel)
	assert.False(t, v.Busy)

	loading.Set(true)
	v = form.View()
	assert.Equal(t, BusyLabel, v.ButtonLabel)
	assert.True(t, v.Busy)
}

func TestViewCustomHeading(t *testing.T) {
	form := NewForm(Props{Heading: "Edit Report"})
	assert.Equal(t, "Edit Report", form.View().Heading)
}

func TestNilFlagReadsFalse(t *testing.T) {
	var f *Flag
	assert.False(t, f.Value())
}

func TestViewCarriesBusyLabel(t *testing.T) {
	form := NewForm(Props{SubmitLabel: "Запази"})
	v := form.View()
	assert.Equal(t, "Запази", v.ButtonLabel)
	assert.Equal(t, BusyLabel, v.BusyLabel)
}

func TestNilFlagIgnoresSet(t *testing.T) {
	var f *Flag
	assert.NotPanics(t, func() { f.Set(true) })
	assert.False(t, f.Value())
}
