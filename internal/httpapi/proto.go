package httpapi

import (
	"mime"
	"net/http"
	"strings"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/liyanaidrs/CPC357-Assign2/internal/attendance/types"
)

const protobufContentType = "application/x-protobuf"

// wantsProtobuf returns true if the client asked for a protobuf response
// in its Accept header.
func wantsProtobuf(r *http.Request) bool {
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mt, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		switch mt {
		case protobufContentType, "application/protobuf":
			return true
		}
	}
	return false
}

// writeProto marshals msg and writes it with the given HTTP status.
func writeProto(w http.ResponseWriter, status int, msg proto.Message) {
	data, err := proto.Marshal(msg)
	if err != nil {
		// Fall back to a plain-text error if marshalling fails.
		http.Error(w, "proto marshal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", protobufContentType)
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// statsToProto encodes stats as a google.protobuf.Struct with the same keys
// as the JSON representation.
func statsToProto(s types.Stats) (*structpb.Struct, error) {
	totals := make(map[string]any, len(s.StatusTotals))
	for k, v := range s.StatusTotals {
		totals[k] = v
	}
	return structpb.NewStruct(map[string]any{
		"day":                  s.Day,
		"present_today":        s.PresentToday,
		"total_unique_scanned": s.TotalUniqueScanned,
		"status_totals":        totals,
	})
}
