package catalog

// PageSize is the fixed number of file references per browse page.
const PageSize = 10

// Page is a fixed-size slice of a category's file references together with
// the navigation flags the transport needs to render prev/next affordances.
type Page struct {
	Files      []FileRef
	Index      int
	TotalCount int
	HasPrev    bool
	HasNext    bool
}

// PageBounds computes the slice bounds for a zero-based page over a list of
// total items. An out-of-range index clamps to the nearest valid page instead
// of erroring; the clamp is observable through the returned index and the
// HasPrev/HasNext flags of the resulting page.
func PageBounds(total, index, size int) (start, end, clamped int) {
	if size <= 0 {
		size = PageSize
	}
	last := 0
	if total > 0 {
		last = (total - 1) / size
	}
	if index < 0 {
		index = 0
	}
	if index > last {
		index = last
	}
	start = index * size
	end = start + size
	if end > total {
		end = total
	}
	if start > total {
		start = total
	}
	return start, end, index
}

// BuildPage slices refs into the requested page. Totals are taken from the
// provided list at call time; nothing is cached across navigation steps.
func BuildPage(refs []FileRef, index, size int) Page {
	if size <= 0 {
		size = PageSize
	}
	total := len(refs)
	start, end, idx := PageBounds(total, index, size)
	return Page{
		Files:      refs[start:end],
		Index:      idx,
		TotalCount: total,
		HasPrev:    idx > 0,
		HasNext:    (idx+1)*size < total,
	}
}

// PageCount returns the number of pages a category with total items renders.
// An empty category still renders a single (empty) page.
func PageCount(total, size int) int {
	if size <= 0 {
		size = PageSize
	}
	if total <= 0 {
		return 1
	}
	return (total + size - 1) / size
}
