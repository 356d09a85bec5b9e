// Package lmwire provides a Go client for the LM Studio websocket API.
//
// The server multiplexes its API across a small set of named namespaces
// (system, llm, embedding, files), each served over its own WebSocket
// connection. Within one connection the client correlates many concurrent
// remote procedure calls and long-lived streaming channels by id, so a
// single socket serves any number of in-flight operations.
//
// # Thread Safety
//
// [Client], [Session] and [Connection] are safe for concurrent use by
// multiple goroutines. [ChannelStream] should only be consumed by a single
// goroutine.
//
// # Basic Usage
//
//	ctx := context.Background()
//
//	client, err := lmwire.NewClient("localhost:1234")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	models, err := client.ListDownloadedModels(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, m := range models {
//	    fmt.Println(m.ModelKey)
//	}
//
// Lower-level access goes through the per-namespace sessions. Sessions
// connect implicitly on first use and may be closed and reused:
//
//	result, err := client.System().RemoteCall(ctx, "listDownloadedModels", nil)
//
// Streaming endpoints return a [ChannelStream]:
//
//	stream, err := client.LLM().RemoteStream(ctx, "predict", params)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer stream.Cancel()
//
//	for msg, err := range stream.Messages(ctx) {
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Print(string(msg.Message))
//	}
//
// # Authentication
//
// The client authenticates with an API token of the form
// "sk-lm-<id>:<passkey>", supplied either via [WithAPIToken] or the
// LMSTUDIO_API_TOKEN environment variable. Without a token the client
// falls back to a generated guest identity. Additional HTTP headers for
// the websocket handshake (for example to pass a WAF in front of the
// server) come from [WithHTTPHeaders], [WithXAPIKey] or the
// LMSTUDIO_X_API_KEY environment variable.
//
// # Observability
//
// Use [WithLogger], [WithOnSend], and [WithOnReceive] to add logging and
// monitoring to the client:
//
//	client, err := lmwire.NewClient(host,
//	    lmwire.WithLogger(slog.Default()),
//	    lmwire.WithOnSend(func(msg *lmwire.ClientToServerMessage) {
//	        metrics.MessagesSent.Inc()
//	    }),
//	)
package lmwire
