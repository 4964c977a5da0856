package services

import (
	"context"
	"fmt"

	"peka/internal/core"
	"peka/internal/peka"
)

// dayRange is an inclusive range of calendar days.
type dayRange struct {
	start, end core.Day
}

// pageScan is the outcome of scanning one history page: either keep walking
// (continueScan) or the walk has passed the start of the range (stopAt).
type pageScan interface {
	collected() []core.Journey
}

type continueScan struct {
	journeys []core.Journey
	// day of the page's last item, zero when the page was empty
	last core.Day
}

type stopAt struct {
	journeys []core.Journey
	// day of the first item older than the range
	day core.Day
}

func (s continueScan) collected() []core.Journey { return s.journeys }
func (s stopAt) collected() []core.Journey       { return s.journeys }

// scanPage filters one page, newest item first. Items after the range are skipped,
// the first item before it ends the scan, confirmed rides inside it are collected.
func scanPage(items []peka.TransitItem, r dayRange) (pageScan, error) {
	var journeys []core.Journey
	var last core.Day
	for _, item := range items {
		day, err := core.ToDay(item.TransactionDate)
		if err != nil {
			return nil, fmt.Errorf("transaction %s: %w", item.TransactionID, err)
		}
		last = day
		if day.After(r.end) {
			continue
		}
		if day.Before(r.start) {
			return stopAt{journeys: journeys, day: day}, nil
		}
		if !core.IsRide(item.TransactionType, item.TransactionStatus) {
			continue
		}
		j, err := toJourney(item)
		if err != nil {
			return nil, err
		}
		journeys = append(journeys, j)
	}
	return continueScan{journeys: journeys, last: last}, nil
}

type walkState int

const (
	walkScanning walkState = iota
	// walkStopped: an item older than the range was seen; no more pages are fetched.
	walkStopped
	// walkExhausted: every page was scanned without reaching the range start.
	walkExhausted
)

func (s walkState) String() string {
	switch s {
	case walkScanning:
		return "scanning"
	case walkStopped:
		return "stopped"
	case walkExhausted:
		return "exhausted"
	default:
		return fmt.Sprintf("walkState(%d)", int(s))
	}
}

type walkResult struct {
	state        walkState
	journeys     []core.Journey
	totalPages   int
	pagesFetched int
	// oldestDay is the day of the last item seen on any fully scanned page. Empty
	// trailing pages leave it unchanged.
	oldestDay core.Day
}

type pageFetcher func(ctx context.Context, pageNumber int) (*peka.TransitPage, error)

// walkPages fetches history pages strictly in order, starting at page 0, until a
// page scan stops or the pages run out. Page 0 is fetched once; its totalPages bounds
// the walk.
func walkPages(ctx context.Context, fetch pageFetcher, r dayRange) (*walkResult, error) {
	page, err := fetch(ctx, 0)
	if err != nil {
		return nil, err
	}

	res := &walkResult{
		state:        walkScanning,
		totalPages:   page.TotalPages,
		pagesFetched: 1,
	}

	for n := 0; res.state == walkScanning; n++ {
		if n >= res.totalPages {
			res.state = walkExhausted
			break
		}

		if n > 0 {
			if page, err = fetch(ctx, n); err != nil {
				return nil, err
			}
			res.pagesFetched++
		}

		scan, err := scanPage(page.Content, r)
		if err != nil {
			return nil, fmt.Errorf("scan page %d: %w", n, err)
		}
		res.journeys = append(res.journeys, scan.collected()...)

		switch scan := scan.(type) {
		case stopAt:
			res.state = walkStopped
		case continueScan:
			if !scan.last.IsZero() {
				res.oldestDay = scan.last
			}
		}
	}

	return res, nil
}
