/*
Package ports defines the driven ports (interfaces) of the Living Trust backend.

These interfaces decouple the wizard and the HTTP API from storage backends,
the submission transport and the model provider.

# Key Interfaces

  - WizardStore: persists wizard session state between steps.
  - TrustRepository, DocumentRepository, UserRepository: backend records.
  - SubmissionGateway: the single call that turns a confirmed draft into a trust.
  - Advisor: chat answers and document analysis.
  - DistributedLocker: coordinates session access across replicas.
*/
package ports
