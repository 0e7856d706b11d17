// Affinity - Hybrid Similarity Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package recommend

import (
	"sort"
)

// Item is a catalog entry. Optional categorical attributes are nil when the
// record store has no value for them.
type Item struct {
	// ID is the catalog identifier (content_id).
	ID string `json:"id"`

	// Minutes is the running time of the item.
	Minutes float64 `json:"minutes"`

	// Genre is the genre identifier, if known.
	Genre *string `json:"genre,omitempty"`

	// Language is the item's language code, if known.
	Language *string `json:"language,omitempty"`

	// Attributes holds additional categorical columns (e.g. studio) keyed by
	// column name. Absent keys mean the value is missing.
	Attributes map[string]string `json:"attributes,omitempty"`
}

// Attribute returns the named categorical attribute of the item.
// "genre" and "language" resolve to the dedicated fields.
func (it *Item) Attribute(name string) (string, bool) {
	switch name {
	case AttributeGenre:
		if it.Genre == nil {
			return "", false
		}
		return *it.Genre, true
	case AttributeLanguage:
		if it.Language == nil {
			return "", false
		}
		return *it.Language, true
	}
	v, ok := it.Attributes[name]
	return v, ok
}

// Well-known categorical attribute names.
const (
	AttributeGenre    = "genre"
	AttributeLanguage = "language"
)

// User is a subscriber of the service.
type User struct {
	ID              string  `json:"id"`
	PrimaryLanguage *string `json:"primary_language,omitempty"`
	Age             *int    `json:"age,omitempty"`
	Region          *string `json:"region,omitempty"`
}

// InteractionEvent is a raw view event. Several events may exist for the same
// (user, item) pair.
type InteractionEvent struct {
	UserID        string      `json:"user_id"`
	ItemID        string      `json:"item_id"`
	SecondsViewed float64     `json:"seconds_viewed"`
	Date          ServiceDate `json:"date"`
}

// Subscription links a user to a publisher.
type Subscription struct {
	UserID      string `json:"user_id"`
	PublisherID string `json:"publisher_id"`
}

// Snapshot is the full set of records a run is computed from.
// It is never mutated once handed to a run.
type Snapshot struct {
	Events        []InteractionEvent
	Items         []Item
	Users         []User
	Subscriptions []Subscription

	itemIndex map[string]int
	userIndex map[string]int
}

// NewSnapshot builds a snapshot and its key indexes. Later duplicates of an
// item or user ID are ignored.
func NewSnapshot(events []InteractionEvent, items []Item, users []User, subs []Subscription) *Snapshot {
	s := &Snapshot{
		Events:        events,
		Items:         items,
		Users:         users,
		Subscriptions: subs,
		itemIndex:     make(map[string]int, len(items)),
		userIndex:     make(map[string]int, len(users)),
	}
	for i := range items {
		if _, ok := s.itemIndex[items[i].ID]; !ok {
			s.itemIndex[items[i].ID] = i
		}
	}
	for i := range users {
		if _, ok := s.userIndex[users[i].ID]; !ok {
			s.userIndex[users[i].ID] = i
		}
	}
	return s
}

// Item looks up an item by ID.
func (s *Snapshot) Item(id string) (Item, bool) {
	i, ok := s.itemIndex[id]
	if !ok {
		return Item{}, false
	}
	return s.Items[i], true
}

// User looks up a user by ID.
func (s *Snapshot) User(id string) (User, bool) {
	i, ok := s.userIndex[id]
	if !ok {
		return User{}, false
	}
	return s.Users[i], true
}

// ItemMap returns the items keyed by ID.
func (s *Snapshot) ItemMap() map[string]Item {
	m := make(map[string]Item, len(s.itemIndex))
	for id, i := range s.itemIndex {
		m[id] = s.Items[i]
	}
	return m
}

// EngagementRecord is the single deduplicated engagement of a user with an item.
type EngagementRecord struct {
	UserID        string  `json:"user_id"`
	ItemID        string  `json:"item_id"`
	SecondsViewed float64 `json:"seconds_viewed"`
	Score         float64 `json:"score"`
}

// EngagementMatrix is a sparse user x item matrix of engagement scores.
// Unlisted pairs score 0. Users and items are kept in ascending ID order.
type EngagementMatrix struct {
	rows  map[string]map[string]float64
	users []string
	items []string
}

// NewEngagementMatrix builds a matrix from deduplicated records. If a pair
// appears more than once the highest score wins.
func NewEngagementMatrix(records []EngagementRecord) *EngagementMatrix {
	rows := make(map[string]map[string]float64)
	itemSet := make(map[string]struct{})
	for _, r := range records {
		row, ok := rows[r.UserID]
		if !ok {
			row = make(map[string]float64)
			rows[r.UserID] = row
		}
		if cur, seen := row[r.ItemID]; !seen || r.Score > cur {
			row[r.ItemID] = r.Score
		}
		itemSet[r.ItemID] = struct{}{}
	}
	return &EngagementMatrix{
		rows:  rows,
		users: sortedKeys(rows),
		items: sortedSet(itemSet),
	}
}

// Users returns user IDs in ascending order.
func (m *EngagementMatrix) Users() []string {
	return m.users
}

// Items returns item IDs in ascending order.
func (m *EngagementMatrix) Items() []string {
	return m.items
}

// NumUsers returns the number of users with at least one record.
func (m *EngagementMatrix) NumUsers() int {
	return len(m.users)
}

// NumItems returns the number of items with at least one record.
func (m *EngagementMatrix) NumItems() int {
	return len(m.items)
}

// Score returns the engagement of a user with an item (0 when absent).
func (m *EngagementMatrix) Score(userID, itemID string) float64 {
	return m.rows[userID][itemID]
}

// Row returns the items a user engaged with and their scores.
// The returned map must not be modified.
func (m *EngagementMatrix) Row(userID string) (map[string]float64, bool) {
	row, ok := m.rows[userID]
	return row, ok
}

// Activity returns the sum of a user's engagement scores, accumulated in
// item ID order so equal rows always produce equal sums.
func (m *EngagementMatrix) Activity(userID string) float64 {
	row := m.rows[userID]
	var sum float64
	for _, item := range sortedKeys(row) {
		sum += row[item]
	}
	return sum
}

// Column returns the item's score vector across Users() order.
func (m *EngagementMatrix) Column(itemID string) []float64 {
	col := make([]float64, len(m.users))
	for i, u := range m.users {
		col[i] = m.rows[u][itemID]
	}
	return col
}

// Restrict returns a new matrix limited to the given users and items.
// A nil set means no restriction on that axis.
func (m *EngagementMatrix) Restrict(users, items map[string]struct{}) *EngagementMatrix {
	var records []EngagementRecord
	for _, u := range m.users {
		if users != nil {
			if _, ok := users[u]; !ok {
				continue
			}
		}
		for it, score := range m.rows[u] {
			if items != nil {
				if _, ok := items[it]; !ok {
					continue
				}
			}
			records = append(records, EngagementRecord{UserID: u, ItemID: it, Score: score})
		}
	}
	return NewEngagementMatrix(records)
}

// RecommendationSource describes which path produced a recommendation list.
type RecommendationSource string

const (
	// SourcePersonalized lists come entirely from the similarity generator.
	SourcePersonalized RecommendationSource = "personalized"
	// SourceMixed lists were topped up by the fallback policy.
	SourceMixed RecommendationSource = "personalized+fallback"
	// SourceFallback lists come entirely from the fallback policy.
	SourceFallback RecommendationSource = "fallback"
	// SourceNone marks an empty list.
	SourceNone RecommendationSource = "none"
)

// RecommendationList is an ordered list of at most N items for one user.
// It never contains an item the user has already seen.
type RecommendationList struct {
	UserID string               `json:"user_id"`
	Items  []string             `json:"items"`
	Scores []float64            `json:"scores"`
	Source RecommendationSource `json:"source"`
}

// Len returns the number of recommended items.
func (l *RecommendationList) Len() int {
	return len(l.Items)
}

// ContentScope is the set of items eligible for recommendation, derived from
// the publisher with the most distinct subscribers.
type ContentScope struct {
	PublisherID     string
	SubscriberCount int

	subscribers map[string]struct{}
	items       map[string]struct{}
}

// NewContentScope builds a scope from subscriber and item sets.
func NewContentScope(publisherID string, subscribers, items map[string]struct{}) *ContentScope {
	return &ContentScope{
		PublisherID:     publisherID,
		SubscriberCount: len(subscribers),
		subscribers:     subscribers,
		items:           items,
	}
}

// Contains reports whether an item is in scope.
func (s *ContentScope) Contains(itemID string) bool {
	_, ok := s.items[itemID]
	return ok
}

// HasSubscriber reports whether a user subscribes to the scope's publisher.
func (s *ContentScope) HasSubscriber(userID string) bool {
	_, ok := s.subscribers[userID]
	return ok
}

// Items returns in-scope item IDs in ascending order.
func (s *ContentScope) Items() []string {
	return sortedSet(s.items)
}

// ItemSet returns the in-scope item set. It must not be modified.
func (s *ContentScope) ItemSet() map[string]struct{} {
	return s.items
}

// SubscriberSet returns the subscriber set. It must not be modified.
func (s *ContentScope) SubscriberSet() map[string]struct{} {
	return s.subscribers
}

// Size returns the number of in-scope items.
func (s *ContentScope) Size() int {
	return len(s.items)
}

// MethodReport summarizes evaluation of one recommendation method.
type MethodReport struct {
	Method              Method  `json:"method"`
	N                   int     `json:"n"`
	ExactPrecision      float64 `json:"precision_exact"`
	SimilarityPrecision float64 `json:"precision_similarity"`
	UsersRequested      int     `json:"users_requested"`
	UsersEvaluated      int     `json:"users_evaluated"`
	RecommendedSlots    int     `json:"recommended_slots"`
	UniqueItems         int     `json:"unique_items"`
	Coverage            float64 `json:"coverage"`
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedSet(m map[string]struct{}) []string {
	return sortedKeys(m)
}
