package ratelimit

import (
	"strconv"
	"time"
)

// formatação dos valores numéricos usados nos headers de cota.

func formatInt(v int) string { return strconv.Itoa(v) }

func formatMillis(t time.Time) string { return strconv.FormatInt(t.UnixMilli(), 10) }

func formatSeconds(d time.Duration) string { return strconv.FormatInt(int64(d/time.Second), 10) }
