package model

import "strings"

// TrackedCollection is a subreddit polled under a topic label.
type TrackedCollection struct {
	Topic string `json:"topic"`
	Name  string `json:"name"`
}

// NormalizeCollection strips whitespace and any leading "r/" or "/r/"
// prefix from a subreddit name.
func NormalizeCollection(name string) string {
	name = strings.TrimSpace(name)
	name = strings.TrimPrefix(name, "/")
	if len(name) >= 2 && strings.EqualFold(name[:2], "r/") {
		name = name[2:]
	}
	return strings.TrimSpace(name)
}

// ParseTracking reads the tracking sheet layout: the first row holds topic
// names and each column below lists that topic's subreddits. Collections are
// returned topic by topic in column order; blank cells are skipped.
func ParseTracking(rows [][]string) []TrackedCollection {
	if len(rows) == 0 {
		return nil
	}
	header := rows[0]

	var out []TrackedCollection
	for col, topic := range header {
		topic = strings.TrimSpace(topic)
		if topic == "" {
			continue
		}
		for _, row := range rows[1:] {
			if col >= len(row) {
				continue
			}
			name := NormalizeCollection(row[col])
			if name == "" {
				continue
			}
			out = append(out, TrackedCollection{Topic: topic, Name: name})
		}
	}
	return out
}

// AppendTracking adds names under topic to the tracking sheet rows and
// returns the new table. A missing topic column is appended to the right.
// Names already listed under any topic (case-insensitive) are not added
// again.
func AppendTracking(rows [][]string, topic string, names []string) [][]string {
	table := cloneTable(rows)
	if len(table) == 0 {
		table = [][]string{{}}
	}

	existing := make(map[string]bool)
	for _, c := range ParseTracking(table) {
		existing[strings.ToLower(c.Name)] = true
	}

	col := -1
	for i, h := range table[0] {
		if strings.TrimSpace(h) == topic {
			col = i
			break
		}
	}
	if col < 0 {
		col = len(table[0])
		table[0] = append(table[0], topic)
	}

	// First free row in the column.
	next := 1
	for r := 1; r < len(table); r++ {
		if col < len(table[r]) && strings.TrimSpace(table[r][col]) != "" {
			next = r + 1
		}
	}

	for _, name := range names {
		name = NormalizeCollection(name)
		key := strings.ToLower(name)
		if name == "" || existing[key] {
			continue
		}
		existing[key] = true
		for len(table) <= next {
			table = append(table, nil)
		}
		for len(table[next]) <= col {
			table[next] = append(table[next], "")
		}
		table[next][col] = name
		next++
	}
	return table
}

func cloneTable(rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = append([]string(nil), r...)
	}
	return out
}
