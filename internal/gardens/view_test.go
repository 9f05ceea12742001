package gardens

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/gardenbook/internal/pocketbase"
)

func TestViewEmptyResponseShowsEmptyState(t *testing.T) {
	l := newTestList(&stubClient{items: []*pocketbase.Record{}}, DefaultOptions())
	l.Load(context.Background())

	v := l.View()
	assert.True(t, v.Empty)
	assert.Empty(t, v.Cards)
	assert.False(t, v.Loading)
	assert.True(t, v.ShowCreateButton)
	assert.Equal(t, "/gardens/create", v.CreateURL)
}

func TestViewSuppressesGridWhileLoading(t *testing.T) {
	client := &stubClient{items: []*pocketbase.Record{garden("g1", "A", "x")}}
	l := newTestList(client, DefaultOptions())
	l.Load(context.Background())

	var during View
	client.onList = func() { during = l.View() }
	l.Load(context.Background())

	assert.True(t, during.Loading)
	assert.False(t, during.Empty)
	assert.Empty(t, during.Cards)
	assert.Len(t, l.View().Cards, 1)
}

func TestViewDuplicateIDRendersOneCardWithLaterFields(t *testing.T) {
	client := &stubClient{items: []*pocketbase.Record{
		garden("g1", "First", "First St"),
		garden("g1", "Second", "Second St"),
	}}
	l := newTestList(client, DefaultOptions())
	l.Load(context.Background())

	v := l.View()
	require.Len(t, v.Cards, 1)
	assert.Equal(t, "g1", v.Cards[0].ID)
	assert.Equal(t, "Second", v.Cards[0].Title)
	assert.Equal(t, "Second St", v.Cards[0].Address)
}

func TestViewCards(t *testing.T) {
	client := &stubClient{items: []*pocketbase.Record{
		garden("g1", "Orchard", "1 Main St", "front.jpg", "back.jpg"),
		garden("g2", "Herbs", "2 Side Rd"),
	}}
	l := newTestList(client, DefaultOptions())
	l.Load(context.Background())

	want := []Card{
		{
			ID:         "g1",
			Title:      "Orchard",
			Address:    "1 Main St",
			PhotoURL:   "http://pb.test/api/files/gardens/g1/front.jpg",
			DetailsURL: "/gardens/details/g1",
			EditURL:    "/gardens/edit/g1",
			DeleteURL:  "/gardens/g1/delete",
		},
		{
			ID:         "g2",
			Title:      "Herbs",
			Address:    "2 Side Rd",
			DetailsURL: "/gardens/details/g2",
			EditURL:    "/gardens/edit/g2",
			DeleteURL:  "/gardens/g2/delete",
		},
	}
	if diff := cmp.Diff(want, l.View().Cards); diff != "" {
		t.Errorf("cards mismatch (-want +got):\n%s", diff)
	}
}

func TestViewWithoutActions(t *testing.T) {
	client := &stubClient{items: []*pocketbase.Record{garden("g1", "Orchard", "1 Main St")}}
	l := newTestList(client, Options{})
	l.Load(context.Background())

	v := l.View()
	assert.False(t, v.ShowActions)
	assert.False(t, v.ShowCreateButton)
	require.Len(t, v.Cards, 1)
	assert.Equal(t, "/gardens/details/g1", v.Cards[0].DetailsURL)
	assert.Empty(t, v.Cards[0].EditURL)
	assert.Empty(t, v.Cards[0].DeleteURL)
}

func TestViewCarriesBanners(t *testing.T) {
	client := &stubClient{
		items:     []*pocketbase.Record{garden("g1", "A", "x")},
		deleteErr: &pocketbase.ResponseError{Status: 404, Message: "not found"},
	}
	l := newTestList(client, DefaultOptions())
	l.Load(context.Background())
	l.Delete(context.Background(), "g1", always(true))

	v := l.View()
	assert.Equal(t, "not found", v.Error)
	assert.Empty(t, v.Success)
	assert.Len(t, v.Cards, 1)
}

func TestPathsEscapeIDs(t *testing.T) {
	assert.Equal(t, "/gardens/details/a%2Fb", DetailsPath("a/b"))
	assert.Equal(t, "/gardens/edit/a%2Fb", EditPath("a/b"))
	assert.Equal(t, "/gardens/a%2Fb/delete", DeletePath("a/b"))
}
