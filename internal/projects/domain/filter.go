package domain

import "strings"

// FilterProjects keeps projects whose name or target URL contains query,
// case-insensitively. An empty query keeps everything.
func FilterProjects(projects []Project, query string) []Project {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return projects
	}

	out := make([]Project, 0, len(projects))
	for _, p := range projects {
		if strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.TargetURL), q) {
			out = append(out, p)
		}
	}
	return out
}

// ComputeStats aggregates dashboard counters.
func ComputeStats(projects []Project) Stats {
	s := Stats{TotalProjects: len(projects)}
	for _, p := range projects {
		switch p.Status {
		case StatusCompleted:
			s.CompletedProjects++
		case StatusRunning:
			s.RunningProjects++
		case StatusFailed:
			s.FailedProjects++
		}
		s.TotalScrapedItems += p.ScrapedItems
	}
	return s
}
