package memory

import (
	"github.com/fekuna/omnipos-production-service/internal/consolidation"
	"github.com/fekuna/omnipos-production-service/internal/dashboard"
	"github.com/fekuna/omnipos-production-service/internal/machine"
	"github.com/fekuna/omnipos-production-service/internal/order"
	"github.com/fekuna/omnipos-production-service/internal/production"
	"github.com/fekuna/omnipos-production-service/internal/rawmaterial"
)

var (
	_ order.Repository         = (*OrderRepository)(nil)
	_ consolidation.Repository = (*ConsolidationRepository)(nil)
	_ production.Repository    = (*ProductionRepository)(nil)
	_ machine.Repository       = (*MachineRepository)(nil)
	_ rawmaterial.Repository   = (*RawMaterialRepository)(nil)
	_ dashboard.Repository     = (*DashboardRepository)(nil)
)
