package api

func (s *Server) setupRoutes() {
	s.router.GET("/", s.healthHandler.DashboardInfo)
	s.router.GET("/health", s.healthHandler.HealthCheck)

	session := s.router.Group("/session")
	{
		session.POST("/connect", s.sessionHandler.Connect)
		session.POST("/disconnect", s.sessionHandler.Disconnect)
		session.GET("/status", s.sessionHandler.Status)
	}

	trajectories := s.router.Group("/trajectories")
	{
		trajectories.GET("", s.trajectoryHandler.List)
		trajectories.GET("/:id", s.trajectoryHandler.Get)
		trajectories.POST("/clear", s.trajectoryHandler.ClearAll)
		trajectories.DELETE("/:id", s.trajectoryHandler.Clear)
	}

	system := s.router.Group("/system")
	{
		system.GET("/stats", s.systemHandler.GetStats)
	}
}
