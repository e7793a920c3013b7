package digest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"azdigest/internal/bullets"
	"azdigest/internal/dedup"
	"azdigest/internal/feed"
	"azdigest/internal/logger"
	"azdigest/internal/metrics"
	"azdigest/internal/scraper"
	"azdigest/internal/translate"
)

const (
	defaultLookbackDays = 30
	defaultMaxItems     = 12
	maxMaxItems         = 30
	defaultWindowHours  = 24
	maxWindowHours      = 168
	fallbackDisplayCap  = 10

	defaultSchedule = "매일 07:00, 15:00, 22:00 (KST)에 새로운 게시글을 확인합니다."
)

// Fetcher pulls items from one feed URL.
type Fetcher interface {
	Fetch(ctx context.Context, feedURL string, cutoff time.Time) ([]feed.Item, error)
}

// Excerpter pulls the opening paragraph from a post's page.
type Excerpter interface {
	Excerpt(ctx context.Context, url string) string
}

// Translator produces Korean bullet sets for a batch of posts.
type Translator interface {
	TranslateBatch(ctx context.Context, items []translate.Item) (map[int][]string, translate.Diagnostics)
}

type Assembler struct {
	fetcher     Fetcher
	excerpter   Excerpter
	store       dedup.Store // nil disables novelty checks and persistence
	translator  Translator
	bulletCount int
}

func NewAssembler(fetcher Fetcher, excerpter Excerpter, store dedup.Store, translator Translator, bulletCount int) *Assembler {
	if bulletCount < 1 || bulletCount > 10 {
		bulletCount = 3
	}
	return &Assembler{
		fetcher:     fetcher,
		excerpter:   excerpter,
		store:       store,
		translator:  translator,
		bulletCount: bulletCount,
	}
}

// Run builds one digest. Feed failures, storage failures, and enrichment
// failures all degrade the output instead of failing the run; the only
// hard error is an empty source list.
func (a *Assembler) Run(ctx context.Context, req Request) (*Result, error) {
	started := time.Now()
	metrics.Global.IncrementDigestRuns()

	if len(req.FeedSources) == 0 {
		return nil, ErrNoFeeds
	}

	lookbackDays := req.LookbackDays
	if lookbackDays <= 0 {
		lookbackDays = defaultLookbackDays
	}
	maxItems := req.MaxItems
	if maxItems <= 0 {
		maxItems = defaultMaxItems
	} else if maxItems > maxMaxItems {
		maxItems = maxMaxItems
	}
	windowHours := req.RecencyWindowHours
	if windowHours <= 0 {
		windowHours = defaultWindowHours
	} else if windowHours > maxWindowHours {
		windowHours = maxWindowHours
	}
	schedule := strings.TrimSpace(req.ScheduleDescription)
	if schedule == "" {
		schedule = defaultSchedule
	}

	now := time.Now().UTC()
	cutoff := now.AddDate(0, 0, -lookbackDays)
	windowCutoff := now.Add(-time.Duration(windowHours) * time.Hour)

	all, statuses := a.fetchAll(ctx, req.FeedSources, cutoff, windowCutoff)
	all = mergeByLink(all)
	metrics.Global.AddItemsProcessed(len(all))

	newPosts := a.classify(ctx, all, windowCutoff, maxItems)
	a.persist(ctx, newPosts)

	display := newPosts
	if len(display) == 0 {
		for _, p := range all {
			if p.Published.Before(windowCutoff) {
				continue
			}
			display = append(display, p)
			if len(display) >= fallbackDisplayCap {
				break
			}
		}
	}

	tdiag := a.enrich(ctx, display)

	// "New" here means published inside the window, not absent from the
	// store: a flaky store must never turn old posts into news.
	recentCount := 0
	for _, p := range display {
		if !p.Published.Before(windowCutoff) {
			recentCount++
		}
	}
	hasNew := recentCount > 0

	subject := "[Microsoft Azure 업데이트] 최근 게시글 요약 (신규 없음)"
	if hasNew {
		subject = fmt.Sprintf("[Microsoft Azure 업데이트] 새 게시글 %d개", recentCount)
	}

	html := renderHTML(renderInput{
		Posts:        display,
		HasNew:       hasNew,
		NewCount:     recentCount,
		ScheduleText: schedule,
		Statuses:     statuses,
		LookbackDays: lookbackDays,
		WindowHours:  windowHours,
		BulletCount:  a.bulletCount,
	})

	elapsed := time.Since(started)
	metrics.Global.RecordRunDuration(elapsed)
	metrics.Global.SetLastRun()

	logger.Info("digest assembled",
		"feeds", len(statuses),
		"items", len(all),
		"new", len(newPosts),
		"displayed", len(display),
		"elapsed_ms", elapsed.Milliseconds())

	return &Result{
		Subject: subject,
		HTML:    html,
		Stats: Stats{
			LookbackDays:       lookbackDays,
			RecencyWindowHours: windowHours,
			Cutoff:             cutoff.Format(time.RFC3339),
			Translation:        tdiag,
			Feeds:              statuses,
			TotalItems:         len(all),
			NewItems:           len(newPosts),
			DisplayedItems:     len(display),
			ElapsedMs:          elapsed.Milliseconds(),
		},
	}, nil
}

// fetchAll pulls every feed sequentially so one slow feed cannot starve
// the rest of connections; a failed feed contributes a status row only.
func (a *Assembler) fetchAll(ctx context.Context, sources []feed.Source, cutoff, windowCutoff time.Time) ([]*Post, []FeedStatus) {
	var all []*Post
	statuses := make([]FeedStatus, 0, len(sources))

	for _, src := range sources {
		if strings.TrimSpace(src.URL) == "" {
			continue
		}
		name := src.Name
		if strings.TrimSpace(name) == "" {
			name = "Unknown"
		}

		sw := time.Now()
		items, err := a.fetcher.Fetch(ctx, src.URL, cutoff)
		elapsed := time.Since(sw).Milliseconds()
		if err != nil {
			logger.Warn("feed fetch failed", "source", name, "url", src.URL, "error", err)
			metrics.Global.AddFeedFailures(1)
			statuses = append(statuses, FeedStatus{
				SourceName: name,
				URL:        src.URL,
				Ok:         false,
				ElapsedMs:  elapsed,
				Error:      err.Error(),
			})
			continue
		}

		inWindow := 0
		for _, it := range items {
			if !it.Published.Before(windowCutoff) {
				inWindow++
			}
			all = append(all, &Post{
				Title:      it.Title,
				Link:       it.Link,
				Summary:    it.Summary,
				Published:  it.Published,
				SourceName: name,
				Emoji:      src.Emoji,
			})
		}

		metrics.Global.AddFeedsFetched(1)
		statuses = append(statuses, FeedStatus{
			SourceName:    name,
			URL:           src.URL,
			Ok:            true,
			Items:         len(items),
			ItemsInWindow: inWindow,
			ElapsedMs:     elapsed,
		})
	}
	return all, statuses
}

// mergeByLink collapses cross-feed duplicates, keeping the latest
// timestamp for each link, and orders newest first.
func mergeByLink(posts []*Post) []*Post {
	byLink := make(map[string]*Post, len(posts))
	for _, p := range posts {
		if strings.TrimSpace(p.Link) == "" {
			continue
		}
		key := strings.ToLower(p.Link)
		if prev, ok := byLink[key]; ok && !p.Published.After(prev.Published) {
			continue
		}
		byLink[key] = p
	}

	out := make([]*Post, 0, len(byLink))
	for _, p := range byLink {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Published.After(out[j].Published)
	})
	return out
}

// classify walks the in-window posts newest first and keeps the first
// maxItems that are not in the dedup store. A store error treats the post
// as new and stops further store reads for this run.
func (a *Assembler) classify(ctx context.Context, all []*Post, windowCutoff time.Time, maxItems int) []*Post {
	var newPosts []*Post
	storeUp := a.store != nil
	dups := 0

	for _, p := range all {
		if p.Published.Before(windowCutoff) {
			continue
		}
		if len(newPosts) >= maxItems {
			break
		}

		isDup := false
		if storeUp {
			pk, rk := dedup.Keys(p.SourceName, p.Link)
			found, err := a.store.Get(ctx, pk, rk)
			if err != nil {
				logger.Warn("dedup check failed, treating as new", "link", p.Link, "error", err)
				storeUp = false
			} else {
				isDup = found
			}
		}
		if isDup {
			dups++
			continue
		}
		newPosts = append(newPosts, p)
	}

	metrics.Global.AddDuplicatesSkipped(dups)
	return newPosts
}

// persist upserts the new posts so the next run classifies them as seen.
// Korean bullets are stored empty; enrichment happens after this stage.
func (a *Assembler) persist(ctx context.Context, newPosts []*Post) {
	if a.store == nil || len(newPosts) == 0 {
		return
	}

	persisted := 0
	for _, p := range newPosts {
		p.EnglishBullets = bullets.Extract(p.Summary)
		pk, rk := dedup.Keys(p.SourceName, p.Link)
		rec := dedup.Record{
			Title:          p.Title,
			Link:           p.Link,
			SourceName:     p.SourceName,
			Summary:        p.Summary,
			EnglishBullets: p.EnglishBullets,
			KoreanBullets:  []string{},
			PublishedAt:    p.Published.UTC().Format(time.RFC3339),
			ProcessedAt:    time.Now().UTC(),
		}
		if err := a.store.Upsert(ctx, pk, rk, rec); err != nil {
			logger.Warn("dedup upsert failed, continuing", "link", p.Link, "error", err)
			break
		}
		persisted++
	}
	metrics.Global.AddPostsPersisted(persisted)
}

// enrich fills excerpts and bullet summaries for the displayed posts and
// attempts the batch Korean translation.
func (a *Assembler) enrich(ctx context.Context, display []*Post) translate.Diagnostics {
	for _, p := range display {
		en := p.EnglishBullets
		if len(en) == 0 {
			en = bullets.Extract(p.Summary)
		}
		p.EnglishBullets = bullets.Normalize(en, a.bulletCount, bullets.EnglishFillers)

		if p.FirstParagraph == "" {
			if a.excerpter != nil {
				p.FirstParagraph = a.excerpter.Excerpt(ctx, p.Link)
			}
			if p.FirstParagraph == "" {
				p.FirstParagraph = scraper.FallbackExcerpt(p.Summary)
			}
		}
	}

	if a.translator == nil {
		return translate.Diagnostics{Error: "AOAI_ENDPOINT/AOAI_DEPLOYMENT not set"}
	}

	items := make([]translate.Item, len(display))
	for i, p := range display {
		items[i] = translate.Item{Index: i, Title: p.Title, Bullets: p.EnglishBullets}
	}

	sets, diag := a.translator.TranslateBatch(ctx, items)
	if diag.Attempted {
		metrics.Global.IncrementTranslationAttempts()
		if !diag.Succeeded {
			metrics.Global.IncrementTranslationFailures()
		}
	}
	for idx, set := range sets {
		if idx >= 0 && idx < len(display) {
			display[idx].KoreanBullets = set
		}
	}
	return diag
}
