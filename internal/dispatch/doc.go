// Package dispatch runs the chat command loop.
//
// The loop polls a chat.Channel, acknowledges every line with
// "Received command: <text>", interprets it and routes the resulting
// command to the executor:
//
//	deploy <template>          creates a deployment from the template
//	scale <template> to <n>    patches the replica count
//	delete <template>          deletes the deployment
//	list pods                  lists pods in the configured namespace
//
// Anything else is answered with RejectMessage. Executor failures are
// posted verbatim and never stop the loop.
package dispatch
