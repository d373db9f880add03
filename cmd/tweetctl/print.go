package main

import (
	"fmt"
	"io"
	"strings"

	"tweet-suggester/internal/domain"
)

func printState(w io.Writer, st *domain.State) {
	if st.Status.Message != "" {
		fmt.Fprintln(w, st.Status.Message)
	}
	if len(st.Suggestions) == 0 {
		return
	}
	fmt.Fprintln(w)
	for _, t := range st.Suggestions {
		printTweet(w, t, true)
	}
}

func printTweet(w io.Writer, t domain.Tweet, withShare bool) {
	fmt.Fprintf(w, "[%s] %s\n", t.ID, t.DisplayText())

	var meta []string
	if len(t.Tags) > 0 {
		meta = append(meta, "tags: "+strings.Join(t.Tags, ", "))
	}
	if t.Rating != nil {
		meta = append(meta, "rating: "+strings.Repeat("*", *t.Rating))
	}
	if t.IsFavorite {
		meta = append(meta, "favorite")
	}
	if t.CustomText != "" {
		meta = append(meta, "edited")
	}
	if len(meta) > 0 {
		fmt.Fprintf(w, "    %s\n", strings.Join(meta, "  "))
	}
	if withShare {
		fmt.Fprintf(w, "    share: %s\n", t.ShareURL())
	}
}
