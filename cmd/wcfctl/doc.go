// Command wcfctl controls a wcferry worker: it starts and stops the worker
// process, issues one-shot commands over the control channel, streams pushed
// messages, and can stand in for the worker with a mock for local work.
package main
