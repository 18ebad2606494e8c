/*
Package domain contains the core types of the Living Trust wizard and its backend.

It is kept pure and free of I/O: storage, transport and model providers live
behind the interfaces in package ports.

# Key Entities

  - TrustDraft: the in-progress trust form collected by the wizard.
  - WizardState: the session snapshot (active phase, draft, notices, acknowledgement).
  - Trust, Document, User: records owned by the backend repositories.
  - Analysis, ChatReply: results produced by the advisory proxy.
*/
package domain
