package tag

// Draft is the unsaved state of the new-tag form.
// It lives only as long as the page that holds it; nothing persists it.
type Draft struct {
	PrimaryName string
	ExtraNames  []string // display order; may contain empty entries while editing
	Type        Type
}

// Submission is the payload sent to the tag service.
type Submission struct {
	Type        Type
	PrimaryName string
	ExtraNames  []string
}

// IsEmpty reports whether a name counts as empty for searching and submitting.
// Only the empty string is empty; whitespace is a name like any other.
func IsEmpty(name string) bool {
	return name == ""
}

// AppendExtraName adds one empty entry at the end of the extra names.
// POST: len(ExtraNames) grows by one; existing entries keep their order
func (d *Draft) AppendExtraName() {
	d.ExtraNames = append(d.ExtraNames, "")
}

// SetExtraName replaces the entry at index i.
// PRE: 0 <= i < len(ExtraNames)
// POST: only index i changes; returns false and changes nothing if i is out of range
func (d *Draft) SetExtraName(i int, name string) bool {
	if i < 0 || i >= len(d.ExtraNames) {
		return false
	}
	names := make([]string, len(d.ExtraNames))
	copy(names, d.ExtraNames)
	names[i] = name
	d.ExtraNames = names
	return true
}

// RemoveExtraName deletes the entry at index i, shifting later entries up.
// PRE: 0 <= i < len(ExtraNames)
// POST: no gaps and no reordering; returns false and changes nothing if i is out of range
func (d *Draft) RemoveExtraName(i int) bool {
	if i < 0 || i >= len(d.ExtraNames) {
		return false
	}
	names := make([]string, 0, len(d.ExtraNames)-1)
	names = append(names, d.ExtraNames[:i]...)
	names = append(names, d.ExtraNames[i+1:]...)
	d.ExtraNames = names
	return true
}

// Ready reports whether the draft may be submitted: a type is chosen and the primary name is not empty.
func (d Draft) Ready() bool {
	return d.Type.IsSet() && !IsEmpty(d.PrimaryName)
}

// SubmittedExtraNames returns the extra names with empty entries and duplicates removed.
// POST: first occurrence order is kept; the draft is not modified
func (d Draft) SubmittedExtraNames() []string {
	names := make([]string, 0, len(d.ExtraNames))
	seen := make(map[string]bool, len(d.ExtraNames))
	for _, n := range d.ExtraNames {
		if IsEmpty(n) || seen[n] {
			continue
		}
		seen[n] = true
		names = append(names, n)
	}
	return names
}

// Submission builds the outgoing payload.
// POST: ok is false when the draft is not Ready
func (d Draft) Submission() (Submission, bool) {
	if !d.Ready() {
		return Submission{}, false
	}
	return Submission{
		Type:        d.Type,
		PrimaryName: d.PrimaryName,
		ExtraNames:  d.SubmittedExtraNames(),
	}, true
}
