package main

import (
	"flag"
	"fmt"
	"log"

	"loyalty_wheel/internal/pkg/config"
	"loyalty_wheel/pkg/utils"
)

// 签发员工/管理员 Token 的运维小工具，联调和演示环境使用
func main() {
	tenantID := flag.String("tenant", "", "Tenant (restaurant) ID")
	admin := flag.Bool("admin", false, "Issue an admin token instead of a staff token")
	flag.Parse()

	if *tenantID == "" {
		log.Fatal("-tenant is required")
	}

	config.LoadConfig()

	role := utils.RoleStaff
	if *admin {
		role = utils.RoleAdmin
	}

	token, expiresAt, err := utils.GenerateToken(*tenantID, role)
	if err != nil {
		log.Fatalf("Failed to generate token: %v", err)
	}

	fmt.Println(token)
	fmt.Printf("expires at: %s\n", expiresAt.Format("2006-01-02 15:04:05"))
}
