// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package airtz

import (
	"fmt"
	"strings"

	"github.com/RavuAlHemio/airfield-timezones/logger"
)

// DocumentInfo holds the document information dictionary entries that
// identify a chart supplement edition.
type DocumentInfo struct {
	Title        string
	Subject      string
	Producer     string
	CreationDate string
	ModDate      string
}

func (d DocumentInfo) String() string {
	var parts []string
	for _, kv := range [][2]string{
		{"title", d.Title},
		{"subject", d.Subject},
		{"producer", d.Producer},
		{"created", d.CreationDate},
		{"modified", d.ModDate},
	} {
		if kv[1] != "" {
			parts = append(parts, fmt.Sprintf("%s=%q", kv[0], kv[1]))
		}
	}
	return strings.Join(parts, " ")
}

// Info reads the trailer's /Info dictionary. Missing entries are empty.
func (r *Reader) Info() DocumentInfo {
	info := r.Trailer().Key("Info")
	if info.Kind() != Dict {
		return DocumentInfo{}
	}
	get := func(key string) string {
		return strings.TrimSpace(info.Key(key).Text())
	}
	d := DocumentInfo{
		Title:        get("Title"),
		Subject:      get("Subject"),
		Producer:     get("Producer"),
		CreationDate: get("CreationDate"),
		ModDate:      get("ModDate"),
	}
	logger.Debug(fmt.Sprintf("info: %v", d), true)
	return d
}
