package handlers

import "github.com/gofiber/fiber/v2"

func Index(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).SendString("")
}

func Page(c *fiber.Ctx) error {
	c.Type("html")
	return c.SendString("<h1> You are on the page </h1>")
}

func OtherPage(c *fiber.Ctx) error {
	c.Type("html")
	return c.SendString("<h1> You are on the other page </h1>")
}
