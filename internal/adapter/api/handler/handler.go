package handler

import (
	"jasahub/internal/domain/service"
	"jasahub/internal/infrastructure/firebase"
	"jasahub/internal/usecase"
)

var (
	disputeHandler      *DisputeHandler
	adminDisputeHandler *AdminDisputeHandler
	operatorHandler     *OperatorHandler
	evidenceHandler     *EvidenceHandler
	healthHandler       *HealthHandler
)

func Setup(
	disputeUseCase *usecase.DisputeUseCase,
	messageUseCase *usecase.DisputeMessageUseCase,
	statsUseCase *usecase.DisputeStatsUseCase,
	operatorUseCase *usecase.OperatorUseCase,
	evidenceStorage service.EvidenceStorage,
	firebaseAuth *firebase.FirebaseAuthClient,
) {
	disputeHandler = NewDisputeHandler(disputeUseCase, messageUseCase)
	adminDisputeHandler = NewAdminDisputeHandler(disputeUseCase, messageUseCase, statsUseCase)
	operatorHandler = NewOperatorHandler(operatorUseCase)
	evidenceHandler = NewEvidenceHandler(evidenceStorage)
	healthHandler = NewHealthHandler(firebaseAuth)
}

func GetDisputeHandler() *DisputeHandler {
	return disputeHandler
}

func GetAdminDisputeHandler() *AdminDisputeHandler {
	return adminDisputeHandler
}

func GetOperatorHandler() *OperatorHandler {
	return operatorHandler
}

func GetEvidenceHandler() *EvidenceHandler {
	return evidenceHandler
}

func GetHealthHandler() *HealthHandler {
	return healthHandler
}
