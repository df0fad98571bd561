package catalog

// Match finds the catalog entry triggered by an action name.
//
// Entries are tried in catalog order; the first whose Include pattern
// matches and whose Exclude pattern (if any) does not match wins. Grant-only
// entries carry no Include pattern and are skipped. No match means the
// action creates no interval, which is the common case.
func (c *Catalog) Match(name string) (Entry, bool) {
	for _, e := range c.Entries {
		if e.Include == nil || !e.Include.MatchString(name) {
			continue
		}
		if e.Exclude != nil && e.Exclude.MatchString(name) {
			continue
		}
		return e, true
	}
	return Entry{}, false
}
