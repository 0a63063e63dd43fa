// Package vvi keeps the venue, volume and issue containment of
// bibliographic resources. Every venue has volumes and issues, every volume
// has issues. Slots are addressed by their labels.
package vvi

import (
	"maps"
	"slices"

	"github.com/gnames/gncurator/internal/ent/key"
)

// Issue is an issue slot.
type Issue struct {
	ID key.Key
}

// Volume is a volume slot with its issues.
type Volume struct {
	ID     key.Key
	Issues map[string]*Issue
}

// Venue holds volumes and issues published directly in a venue.
type Venue struct {
	Volumes map[string]*Volume
	Issues  map[string]*Issue
}

// NewVenue creates an empty venue.
func NewVenue() *Venue {
	return &Venue{
		Volumes: make(map[string]*Volume),
		Issues:  make(map[string]*Issue),
	}
}

// AddVolume returns a volume slot for a label, creating an empty one if
// necessary. The second value is false if the slot was created.
func (v *Venue) AddVolume(label string) (*Volume, bool) {
	if vol, ok := v.Volumes[label]; ok {
		return vol, true
	}
	vol := &Volume{Issues: make(map[string]*Issue)}
	v.Volumes[label] = vol
	return vol, false
}

// AddIssue returns an issue slot published directly in the venue.
func (v *Venue) AddIssue(label string) (*Issue, bool) {
	return addIssue(v.Issues, label)
}

// AddIssue returns an issue slot of the volume.
func (v *Volume) AddIssue(label string) (*Issue, bool) {
	return addIssue(v.Issues, label)
}

func addIssue(issues map[string]*Issue, label string) (*Issue, bool) {
	if iss, ok := issues[label]; ok {
		return iss, true
	}
	iss := &Issue{}
	issues[label] = iss
	return iss, false
}

// Labels returns sorted labels of a slot map.
func Labels[T any](m map[string]T) []string {
	return slices.Sorted(maps.Keys(m))
}

// IssueIndex is an issue in the serialized containment index.
type IssueIndex struct {
	ID string `json:"id"`
}

// VolumeIndex is a volume in the serialized containment index.
type VolumeIndex struct {
	ID    string                `json:"id"`
	Issue map[string]IssueIndex `json:"issue"`
}

// VenueIndex is a venue in the serialized containment index.
type VenueIndex struct {
	Volume map[string]VolumeIndex `json:"volume"`
	Issue  map[string]IssueIndex  `json:"issue"`
}

// Index converts a venue to its serialized form. The resolve function
// converts keys to permanent values.
func (v *Venue) Index(resolve func(key.Key) string) VenueIndex {
	res := VenueIndex{
		Volume: make(map[string]VolumeIndex, len(v.Volumes)),
		Issue:  issueIndex(v.Issues, resolve),
	}
	for label, vol := range v.Volumes {
		res.Volume[label] = VolumeIndex{
			ID:    resolve(vol.ID),
			Issue: issueIndex(vol.Issues, resolve),
		}
	}
	return res
}

func issueIndex(
	issues map[string]*Issue,
	resolve func(key.Key) string,
) map[string]IssueIndex {
	res := make(map[string]IssueIndex, len(issues))
	for label, iss := range issues {
		res[label] = IssueIndex{ID: resolve(iss.ID)}
	}
	return res
}

// Clone returns a deep copy of the venue.
func (v *Venue) Clone() *Venue {
	res := NewVenue()
	for label, vol := range v.Volumes {
		res.Volumes[label] = &Volume{ID: vol.ID, Issues: cloneIssues(vol.Issues)}
	}
	res.Issues = cloneIssues(v.Issues)
	return res
}

func cloneIssues(issues map[string]*Issue) map[string]*Issue {
	res := make(map[string]*Issue, len(issues))
	for label, iss := range issues {
		res[label] = &Issue{ID: iss.ID}
	}
	return res
}
