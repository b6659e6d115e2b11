// Command oscbridge runs a standalone OSC bridge.
//
// It loads options from an optional YAML file and OSCBRIDGE_ environment
// variables, opens the configured receivers and senders, subscribes the
// configured relays and calls Iterate once per iteration interval until it
// receives SIGINT or SIGTERM, then closes every endpoint.
//
// Example configuration:
//
//	iteration_interval: 20ms
//	receivers: [8000]
//	senders:
//	  - host: 127.0.0.1
//	    port: 9000
//	relays:
//	  - from: /fader/1
//	    to: /mixer/fader/1
package main
