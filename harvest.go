// Package harvest provides scheduled extraction of readable text from web
// pages. It runs ad-hoc and recurring extraction jobs, records per-URL
// outcomes durably, and sends best-effort completion notifications.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, trafilatura/, smtp/) or
// their role (runner/, schedule/).
package harvest
