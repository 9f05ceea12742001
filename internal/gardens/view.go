package gardens

import "net/url"

const CreatePath = "/gardens/create"

func DetailsPath(id string) string { return "/gardens/details/" + url.PathEscape(id) }
func EditPath(id string) string    { return "/gardens/edit/" + url.PathEscape(id) }
func DeletePath(id string) string  { return "/gardens/" + url.PathEscape(id) + "/delete" }

// Card is one garden in the grid. PhotoURL is empty when the garden has no
// photos.
type Card struct {
	ID         string
	Title      string
	Address    string
	PhotoURL   string
	DetailsURL string
	EditURL    string
	DeleteURL  string
}

// View is the render model for the list template.
type View struct {
	Error            string
	Success          string
	Loading          bool
	Deleting         bool
	Empty            bool
	Cards            []Card
	ShowActions      bool
	ShowCreateButton bool
	CreateURL        string
}

// View builds the render model from the current state. The grid is suppressed
// while a load is running.
func (l *List) View() View {
	l.mu.Lock()
	defer l.mu.Unlock()

	v := View{
		Error:            l.errMsg,
		Success:          l.success,
		Loading:          l.loading,
		Deleting:         l.deleting,
		ShowActions:      l.opts.ShowActions,
		ShowCreateButton: l.opts.ShowCreateButton,
		CreateURL:        CreatePath,
	}
	if l.loading {
		return v
	}
	if len(l.entries) == 0 {
		v.Empty = true
		return v
	}

	v.Cards = make([]Card, 0, len(l.entries))
	for _, e := range l.entries {
		c := Card{
			ID:         e.garden.ID,
			Title:      e.garden.Title,
			Address:    e.garden.Address,
			DetailsURL: DetailsPath(e.garden.ID),
		}
		if len(e.garden.Photos) > 0 {
			c.PhotoURL = l.client.FileURL(e.record, e.garden.Photos[0])
		}
		if l.opts.ShowActions {
			c.EditURL = EditPath(e.garden.ID)
			c.DeleteURL = DeletePath(e.garden.ID)
		}
		v.Cards = append(v.Cards, c)
	}
	return v
}
