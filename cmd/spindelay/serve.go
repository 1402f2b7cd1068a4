package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/sarchlab/spindelay/datarecording"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve recorded calibrations and verifications over HTTP",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Int("port", defaultPort(), "port to listen on")
	serveCmd.Flags().Bool("open", false,
		"open the calibration report in a browser")
	rootCmd.AddCommand(serveCmd)
}

func defaultPort() int {
	if s := os.Getenv("SPINDELAY_PORT"); s != "" {
		if port, err := strconv.Atoi(s); err == nil {
			return port
		}
	}

	return 8080
}

func runServe(cmd *cobra.Command, _ []string) error {
	dbPath, _ := cmd.Flags().GetString("db")

	reader := datarecording.NewReader(dbPath)
	defer reader.Close()
	reader.MapTable(calibrationTable, profileRow{})
	reader.MapTable(verificationTable, verificationRow{})

	r := mux.NewRouter()
	r.HandleFunc("/api/calibrations",
		listHandler(reader, calibrationTable, "MeasuredAt DESC")).
		Methods("GET")
	r.HandleFunc("/api/verifications",
		listHandler(reader, verificationTable, "VerifiedAt DESC")).
		Methods("GET")

	port, _ := cmd.Flags().GetInt("port")
	addr := fmt.Sprintf(":%d", port)

	if open, _ := cmd.Flags().GetBool("open"); open {
		go func() {
			url := fmt.Sprintf("http://localhost%s/api/calibrations", addr)
			if err := browser.OpenURL(url); err != nil {
				log.Printf("cannot open browser: %v", err)
			}
		}()
	}

	log.Printf("serving recorded runs on %s", addr)

	return http.ListenAndServe(addr, r)
}

func listHandler(
	reader datarecording.DataReader,
	tableName string,
	orderBy string,
) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		params := datarecording.QueryParams{OrderBy: orderBy}

		if s := req.URL.Query().Get("limit"); s != "" {
			limit, err := strconv.Atoi(s)
			if err != nil {
				http.Error(w, "invalid limit", http.StatusBadRequest)
				return
			}
			params.Limit = limit
		}

		if s := req.URL.Query().Get("offset"); s != "" {
			offset, err := strconv.Atoi(s)
			if err != nil {
				http.Error(w, "invalid offset", http.StatusBadRequest)
				return
			}
			params.Offset = offset
		}

		rows, total, err := reader.Query(req.Context(), tableName, params)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		err = json.NewEncoder(w).Encode(map[string]any{
			"total": total,
			"rows":  rows,
		})
		if err != nil {
			log.Printf("cannot encode response: %v", err)
		}
	}
}
