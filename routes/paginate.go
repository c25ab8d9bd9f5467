package routes

// PaginationPage describes one page of a paginated collection, attached as
// props to the resolved page.
type PaginationPage[T any] struct {
	Page       int
	PerPage    int
	TotalItems int
	TotalPages int
	HasNext    bool
	HasPrev    bool
	StartIndex int
	EndIndex   int
	Items      []T
}

// Paginate slices items into pages of perPage and produces one enumeration
// entry per page. paramsFn maps the zero-based page number to that page's
// route parameters. Empty input produces no pages.
func Paginate[T any](items []T, perPage int, paramsFn func(page int) Params) []Page {
	if len(items) == 0 || perPage <= 0 {
		return nil
	}

	total := len(items)
	totalPages := (total + perPage - 1) / perPage

	pages := make([]Page, 0, totalPages)
	for page := 0; page < totalPages; page++ {
		start := page * perPage
		end := min((page+1)*perPage, total)

		pages = append(pages, Page{
			Params: paramsFn(page),
			Props: PaginationPage[T]{
				Page:       page,
				PerPage:    perPage,
				TotalItems: total,
				TotalPages: totalPages,
				HasNext:    page < totalPages-1,
				HasPrev:    page > 0,
				StartIndex: start,
				EndIndex:   end,
				Items:      items[start:end],
			},
		})
	}
	return pages
}
