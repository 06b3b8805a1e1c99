// controller/controllers.go
package controller

// Controllers groups every controller the router mounts.
type Controllers struct {
	Audit  *AuditController
	Client *ClientController
}

func NewControllers(audit *AuditController, client *ClientController) *Controllers {
	return &Controllers{
		Audit:  audit,
		Client: client,
	}
}
