package main

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gloss/internal/api"
)

func buildLectureStatusRows(stats map[string]int) [][]string {
	if len(stats) == 0 {
		return nil
	}
	keys := make([]string, 0, len(stats))
	for key := range stats {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	rows := make([][]string, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, []string{formatStatusLabel(key), fmt.Sprintf("%d", stats[key])})
	}
	return rows
}

func buildCourseRows(courses []api.Course) [][]string {
	if len(courses) == 0 {
		return nil
	}
	rows := make([][]string, 0, len(courses))
	for _, course := range courses {
		rows = append(rows, []string{
			fmt.Sprintf("%d", course.ID),
			course.Name,
			course.Slug,
			formatDisplayTime(course.CreatedAt),
		})
	}
	return rows
}

func buildGroupRows(groups []api.Group) [][]string {
	if len(groups) == 0 {
		return nil
	}
	rows := make([][]string, 0, len(groups))
	for _, group := range groups {
		rows = append(rows, []string{
			fmt.Sprintf("%d", group.ID),
			group.Name,
			group.Slug,
		})
	}
	return rows
}

// buildLectureRows renders lectures in stored order. groupNames maps group IDs
// to display names so grouped lectures show their section.
func buildLectureRows(lectures []api.Lecture, groupNames map[int64]string) [][]string {
	if len(lectures) == 0 {
		return nil
	}
	rows := make([][]string, 0, len(lectures))
	for _, lecture := range lectures {
		group := "-"
		if lecture.GroupID != nil {
			if name, ok := groupNames[*lecture.GroupID]; ok {
				group = name
			} else {
				group = fmt.Sprintf("%d", *lecture.GroupID)
			}
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", lecture.ID),
			lecture.Title,
			group,
			formatStatusLabel(lecture.Status),
			formatDeck(lecture),
			formatDisplayTime(lecture.UpdatedAt),
		})
	}
	return rows
}

func buildNoteRows(notes []api.Note) [][]string {
	if len(notes) == 0 {
		return nil
	}
	rows := make([][]string, 0, len(notes))
	for _, note := range notes {
		rows = append(rows, []string{
			fmt.Sprintf("%d", note.ID),
			formatSlide(note.Slide),
			note.Label,
			truncateText(note.Text, 60),
		})
	}
	return rows
}

func buildCardRows(cards []api.ReviewCard) [][]string {
	if len(cards) == 0 {
		return nil
	}
	rows := make([][]string, 0, len(cards))
	for _, card := range cards {
		state := "OK"
		if card.Failed {
			state = "FAILED"
		} else if strings.TrimSpace(card.Response) == "" {
			state = "PENDING"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", card.ID),
			formatSlide(card.Slide),
			card.Label,
			truncateText(card.NoteText, 48),
			state,
		})
	}
	return rows
}

func formatDeck(lecture api.Lecture) string {
	if strings.TrimSpace(lecture.DeckPath) == "" {
		return "-"
	}
	name := filepath.Base(lecture.DeckPath)
	if lecture.DeckPages > 0 {
		return fmt.Sprintf("%s (%d pages)", name, lecture.DeckPages)
	}
	return name
}

func formatSlide(slide int) string {
	if slide <= 0 {
		return "-"
	}
	return fmt.Sprintf("%d", slide)
}

func formatProgress(p api.ReviewProgress) string {
	if p.Total <= 0 {
		return ""
	}
	label := fmt.Sprintf("%d/%d", p.Done, p.Total)
	if msg := strings.TrimSpace(p.Message); msg != "" {
		return label + " " + msg
	}
	return label
}

// printIndented writes a label line followed by body text indented two spaces.
func printIndented(out io.Writer, label, body string) {
	fmt.Fprintln(out, label)
	body = strings.TrimRight(body, "\n")
	for _, line := range strings.Split(body, "\n") {
		fmt.Fprintf(out, "  %s\n", line)
	}
}

func truncateText(value string, limit int) string {
	value = strings.Join(strings.Fields(value), " ")
	if limit <= 3 || len(value) <= limit {
		return value
	}
	return value[:limit-3] + "..."
}

func formatStatusLabel(status string) string {
	status = strings.TrimSpace(status)
	if status == "" {
		return ""
	}
	parts := strings.Split(status, "_")
	for i, part := range parts {
		lower := strings.ToLower(part)
		if lower == "" {
			continue
		}
		parts[i] = strings.ToUpper(lower[:1]) + lower[1:]
	}
	return strings.Join(parts, " ")
}

func formatDisplayTime(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC().Format("2006-01-02 15:04")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t.UTC().Format("2006-01-02 15:04")
	}
	return value
}
