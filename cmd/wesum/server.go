// cmd/wesum/server.go
package main

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

// Status server for -serve mode: a health endpoint, a state snapshot, and a
// websocket feed that pushes each finished run report to connected clients.

var (
	wsUpgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}
	wsClients = make(map[*websocket.Conn]bool)
	wsMutex   sync.Mutex
)

// StartStatusServer starts the status HTTP server in the background.
func StartStatusServer(port int) {
	router := mux.NewRouter()
	router.HandleFunc("/healthcheck", handleHealthCheck).Methods("GET")
	router.HandleFunc("/api/status", handleStatus).Methods("GET")
	router.HandleFunc("/api/ws", handleWebsocket)

	go func() {
		addr := fmt.Sprintf(":%d", port)
		Log().Infof("status server listening on %s", addr)
		if err := http.ListenAndServe(addr, router); err != nil {
			Log().Errorf("status server failed: %v", err)
		}
	}()
}

func handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"version": AppVersion,
		"uptime":  time.Since(SnapshotState().StartupTime).Round(time.Second).String(),
	})
}

func handleStatus(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, SnapshotState())
}

func handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		Log().Warnf("websocket upgrade failed: %v", err)
		return
	}

	wsMutex.Lock()
	wsClients[conn] = true
	wsMutex.Unlock()

	// Reader loop only detects disconnects; clients don't send anything.
	go func() {
		defer func() {
			wsMutex.Lock()
			delete(wsClients, conn)
			wsMutex.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// BroadcastReport pushes a run report to every connected websocket client.
func BroadcastReport(report *RunReport) {
	wsMutex.Lock()
	defer wsMutex.Unlock()
	for conn := range wsClients {
		if err := conn.WriteJSON(report); err != nil {
			conn.Close()
			delete(wsClients, conn)
		}
	}
}
