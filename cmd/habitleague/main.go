package main

import (
	"context"
	"fmt"
	"os"

	"github.com/comitanigiacomo/habit-league/internal/commands"
)

// @title        Habit League Calendar API
// @version      1.0
// @description  Calendar, statistics and iCalendar views over a user's habits.
// @BasePath     /api/v1
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	if err := commands.New().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
