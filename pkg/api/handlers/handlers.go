package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/crossfire-games/crossfire/pkg/game"
	"github.com/crossfire-games/crossfire/pkg/game/types"
	"github.com/crossfire-games/crossfire/pkg/log"
	"github.com/crossfire-games/crossfire/pkg/messages"
	"github.com/crossfire-games/crossfire/pkg/prefs"
	"github.com/crossfire-games/crossfire/pkg/sensors"
)

func HandleGetState(feature *game.Feature) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, feature.State())
	}
}

func HandleGetTarget(feature *game.Feature) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, messages.TargetResponse{Target: feature.PlayerInSight()})
	}
}

func HandleDispatchWish(feature *game.Feature) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		message := &messages.WishMessage{}
		if err := json.NewDecoder(r.Body).Decode(message); err != nil {
			http.Error(w, "Failed to decode wish", http.StatusBadRequest)
			return
		}
		wish, err := message.Wish()
		if err != nil {
			log.Debug("Rejected wish: %v", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		feature.Dispatch(wish)
		w.WriteHeader(http.StatusAccepted)
	}
}

func HandleReportLocation(source *sensors.ReportedSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := &messages.LocationReport{}
		if err := json.NewDecoder(r.Body).Decode(report); err != nil {
			http.Error(w, "Failed to decode location report", http.StatusBadRequest)
			return
		}
		source.ReportLocation(types.Location{Lat: report.Lat, Lng: report.Lng})
		w.WriteHeader(http.StatusNoContent)
	}
}

func HandleReportHeading(source *sensors.ReportedSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := &messages.HeadingReport{}
		if err := json.NewDecoder(r.Body).Decode(report); err != nil {
			http.Error(w, "Failed to decode heading report", http.StatusBadRequest)
			return
		}
		source.ReportHeading(report.Heading)
		w.WriteHeader(http.StatusNoContent)
	}
}

func HandleGetName(store prefs.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name, err := store.GetName(r.Context())
		if err != nil {
			log.Error("failed to read name: %v", err)
			http.Error(w, "Failed to read name", http.StatusInternalServerError)
			return
		}
		writeJSON(w, messages.NameRecord{Name: name})
	}
}

func HandlePutName(store prefs.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		record := &messages.NameRecord{}
		if err := json.NewDecoder(r.Body).Decode(record); err != nil {
			http.Error(w, "Failed to decode name", http.StatusBadRequest)
			return
		}
		if record.Name == "" {
			http.Error(w, "Name must not be empty", http.StatusBadRequest)
			return
		}
		if err := store.SetName(r.Context(), record.Name); err != nil {
			log.Error("failed to save name: %v", err)
			http.Error(w, "Failed to save name", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to encode response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
