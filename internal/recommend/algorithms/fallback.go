// Affinity - Hybrid Similarity Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package algorithms

import (
	"github.com/tomtom215/affinity/internal/recommend"
)

// FallbackPolicy serves users the generator cannot: a popularity chain over
// the raw view events of scope subscribers on scope items.
//
// The chain, in order:
//  1. count events in the recent window (tick > latest - RecentWindow)
//  2. widen to WidenedWindow when the recent window holds fewer than
//     MinRecentEvents events
//  3. keep only items in the user's primary language, unless the language is
//     unknown or every matching item is excluded
//  4. top up from all-time scope popularity when still short of n
//  5. return whatever exists
//
// Rankings use event counts descending, ties by ascending item ID. The policy
// never consults a similarity matrix.
type FallbackPolicy struct {
	window   int
	latest   int
	events   int
	userLang map[string]string

	windowed   []ranked
	byLanguage map[string][]ranked
	global     []ranked
}

// FallbackResult is the outcome of one fallback query.
type FallbackResult struct {
	Items  []string
	Counts []int

	// Window is the recency window used, in calendar ticks.
	Window int
	// LanguageFiltered reports whether language-matched items were served.
	LanguageFiltered bool
	// ToppedUp reports whether all-time popularity supplied items.
	ToppedUp bool
}

// NewFallbackPolicy precomputes popularity rankings for the scope.
//
//nolint:gocritic // hugeParam: config passed by value for immutability
func NewFallbackPolicy(cfg recommend.FallbackConfig, snap *recommend.Snapshot, scope *recommend.ContentScope) *FallbackPolicy {
	type view struct {
		item string
		tick int
	}

	views := make([]view, 0, len(snap.Events))
	latest := 0
	for i := range snap.Events {
		ev := &snap.Events[i]
		if !scope.HasSubscriber(ev.UserID) || !scope.Contains(ev.ItemID) {
			continue
		}
		tick := ev.Date.Tick()
		if len(views) == 0 || tick > latest {
			latest = tick
		}
		views = append(views, view{item: ev.ItemID, tick: tick})
	}

	inWindow := func(window int) int {
		n := 0
		for _, v := range views {
			if v.tick > latest-window {
				n++
			}
		}
		return n
	}
	window := cfg.RecentWindow
	if inWindow(window) < cfg.MinRecentEvents {
		window = cfg.WidenedWindow
	}

	itemLang := make(map[string]string)
	for _, id := range scope.Items() {
		if item, ok := snap.Item(id); ok && item.Language != nil {
			itemLang[id] = *item.Language
		}
	}

	all := make(map[string]int)
	recent := make(map[string]int)
	recentByLang := make(map[string]map[string]int)
	for _, v := range views {
		all[v.item]++
		if v.tick <= latest-window {
			continue
		}
		recent[v.item]++
		if lang, ok := itemLang[v.item]; ok {
			counts, ok := recentByLang[lang]
			if !ok {
				counts = make(map[string]int)
				recentByLang[lang] = counts
			}
			counts[v.item]++
		}
	}

	byLanguage := make(map[string][]ranked, len(recentByLang))
	for lang, counts := range recentByLang {
		byLanguage[lang] = rankCounts(counts)
	}

	userLang := make(map[string]string)
	for i := range snap.Users {
		u := &snap.Users[i]
		if u.PrimaryLanguage == nil {
			continue
		}
		if _, dup := userLang[u.ID]; !dup {
			userLang[u.ID] = *u.PrimaryLanguage
		}
	}

	return &FallbackPolicy{
		window:     window,
		latest:     latest,
		events:     len(views),
		userLang:   userLang,
		windowed:   rankCounts(recent),
		byLanguage: byLanguage,
		global:     rankCounts(all),
	}
}

// Window returns the recency window chosen for this snapshot.
func (p *FallbackPolicy) Window() int {
	return p.window
}

// Latest returns the most recent calendar tick among scope events.
func (p *FallbackPolicy) Latest() int {
	return p.latest
}

// Events returns the number of scope events the policy counts.
func (p *FallbackPolicy) Events() int {
	return p.events
}

// Recommend returns at most n popular items, skipping anything in exclude.
func (p *FallbackPolicy) Recommend(userID string, n int, exclude map[string]struct{}) FallbackResult {
	res := FallbackResult{Window: p.window}
	if n <= 0 {
		return res
	}

	var byLang []ranked
	if lang, ok := p.userLang[userID]; ok {
		byLang = p.byLanguage[lang]
	}

	chosen := make(map[string]struct{}, n)
	take := func(from []ranked) {
		for _, r := range from {
			if len(res.Items) >= n {
				return
			}
			if _, skip := exclude[r.id]; skip {
				continue
			}
			if _, dup := chosen[r.id]; dup {
				continue
			}
			chosen[r.id] = struct{}{}
			res.Items = append(res.Items, r.id)
			res.Counts = append(res.Counts, int(r.score))
		}
	}

	// An unseen language match narrows the window; otherwise drop the filter.
	take(byLang)
	if len(res.Items) > 0 {
		res.LanguageFiltered = true
	} else {
		take(p.windowed)
	}
	if len(res.Items) < n {
		before := len(res.Items)
		take(p.global)
		res.ToppedUp = len(res.Items) > before
	}
	return res
}

// List converts the result into a recommendation list.
func (r FallbackResult) List(userID string) recommend.RecommendationList {
	list := recommend.RecommendationList{UserID: userID, Source: recommend.SourceNone}
	if len(r.Items) == 0 {
		return list
	}
	list.Items = append([]string(nil), r.Items...)
	list.Scores = make([]float64, len(r.Counts))
	for i, c := range r.Counts {
		list.Scores[i] = float64(c)
	}
	list.Source = recommend.SourceFallback
	return list
}

func rankCounts(counts map[string]int) []ranked {
	out := make([]ranked, 0, len(counts))
	for id, c := range counts {
		out = append(out, ranked{id: id, score: float64(c)})
	}
	sortRanked(out)
	return out
}
