package domain

const (
	CanonicalEventClassDomain = "domain"

	EventDepositCreated   = "vault.deposit.created"
	EventDepositWithdrawn = "vault.deposit.withdrawn"
	EventRoleGranted      = "vault.role.granted"
	EventRoleRevoked      = "vault.role.revoked"
)
