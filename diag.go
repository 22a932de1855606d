package main

import (
	"log"
	"net"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// EchoHandler is the websocket connectivity check: whatever arrives goes to
// the log and straight back out.
func EchoHandler(w http.ResponseWriter, r *http.Request) {
	c, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Print("upgrade:", err)
		return
	}
	defer c.Close()
	for {
		mt, message, err := c.ReadMessage()
		if err != nil {
			log.Println("read:", err)
			break
		}
		log.Printf("recv: %s", message)
		err = c.WriteMessage(mt, message)
		if err != nil {
			log.Println("write:", err)
			break
		}
	}
}

// TelemetryHandler streams state payloads from the conductor to the client
// until the socket drops.
func TelemetryHandler(w http.ResponseWriter, r *http.Request) {
	c, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Print("upgrade:", err)
		return
	}
	defer c.Close()

	updates, cancel := ENV.Conductor.Subscribe()
	defer cancel()

	for msg := range updates {
		if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
			log.Println("telemetry write:", err)
			return
		}
	}
}

// DiagListener is the raw TCP connectivity check. It serves a single
// connection at a time and copies whatever it receives into the log; it is
// deliberately not part of the control path.
func DiagListener(addr string) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Printf("diag listener: %v", err)
		return
	}
	log.Printf("diag listener on %s", addr)

	buf := make([]byte, 1024)
	for {
		conn, err := ln.Accept()
		if err != nil {
			log.Printf("diag accept: %v", err)
			continue
		}

		for {
			n, err := conn.Read(buf)
			if n > 0 {
				log.Printf("diag recv: %q", buf[:n])
				conn.Write(buf[:n])
			}
			if err != nil {
				// connection resets are routine here; log and take the
				// next connection
				log.Printf("diag conn: %v", err)
				break
			}
		}
		conn.Close()
	}
}
