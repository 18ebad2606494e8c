/*
Package observability exports prometheus metrics for the wizard and the HTTP API.

Wizard metrics are fed by domain.LifecycleHooks, so any engine built with
Metrics.Hooks reports step visits, blocked validations and submissions.
HTTP metrics come from the Instrument middleware.
*/
package observability
