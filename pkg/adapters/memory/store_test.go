package memory_test

import (
	"testing"

	"github.com/livingtrust/livingtrust/pkg/adapters/memory"
	"github.com/livingtrust/livingtrust/pkg/ports"
)

func TestMemoryStore_Contract(t *testing.T) {
	ports.RunWizardStoreContract(t, memory.NewStore())
}

func TestTrustRepository_Contract(t *testing.T) {
	ports.RunTrustRepositoryContract(t, memory.NewTrustRepository())
}

func TestDocumentRepository_Contract(t *testing.T) {
	ports.RunDocumentRepositoryContract(t, memory.NewDocumentRepository())
}

func TestUserRepository_Contract(t *testing.T) {
	ports.RunUserRepositoryContract(t, memory.NewUserRepository())
}
