package catalog

import (
	"github.com/terra-clan/interview-console/internal/judge"
	"github.com/terra-clan/interview-console/internal/models"
)

// DefaultLanguage is selected when a panel opens
const DefaultLanguage = "python"

// DefaultFixtureSet is used when neither the challenge nor a fixture file supplies cases
const DefaultFixtureSet = "stock-prices"

func builtinLanguages() []models.Language {
	ids := judge.DefaultLanguageIDs
	return []models.Language{
		{
			Name: "python", Label: "Python 3", Judge0ID: ids["python"],
			Image: "python:3.12-alpine", File: "main.py", Run: "python3 main.py",
			Template: "def solution(prices):\n    # Your code here\n    pass",
		},
		{
			Name: "javascript", Label: "JavaScript (Node.js)", Judge0ID: ids["javascript"],
			Image: "node:20-alpine", File: "main.js", Run: "node main.js",
			Template: "function solution(prices) {\n    // Your code here\n}",
		},
		{
			Name: "java", Label: "Java", Judge0ID: ids["java"],
			Image: "eclipse-temurin:17-jdk-alpine", File: "Main.java", Run: "javac Main.java && java Main",
			Template: "public class Solution {\n    public int solution(int[] prices) {\n        // Your code here\n        return 0;\n    }\n}",
		},
		{
			Name: "cpp", Label: "C++", Judge0ID: ids["cpp"],
			Image: "gcc:14", File: "main.cpp", Run: "g++ -O2 -o main main.cpp && ./main",
			Template: "#include <iostream>\n#include <vector>\nusing namespace std;\n\nint solution(vector<int>& prices) {\n    // Your code here\n    return 0;\n}",
		},
		{
			Name: "c", Label: "C", Judge0ID: ids["c"],
			Image: "gcc:14", File: "main.c", Run: "gcc -O2 -o main main.c && ./main",
			Template: "#include <stdio.h>\n\nint solution(int* prices, int pricesSize) {\n    // Your code here\n    return 0;\n}",
		},
		{
			Name: "csharp", Label: "C#", Judge0ID: ids["csharp"],
			Template: "public class Solution {\n    public int Solution(int[] prices) {\n        // Your code here\n        return 0;\n    }\n}",
		},
		{
			Name: "go", Label: "Go", Judge0ID: ids["go"],
			Image: "golang:1.23-alpine", File: "main.go", Run: "go run main.go",
			Template: "package main\n\nfunc solution(prices []int) int {\n    // Your code here\n    return 0\n}",
		},
		{
			Name: "rust", Label: "Rust", Judge0ID: ids["rust"],
			Image: "rust:1.85-slim", File: "main.rs", Run: "rustc -O -o main main.rs && ./main",
			Template: "fn solution(prices: Vec<i32>) -> i32 {\n    // Your code here\n    0\n}",
		},
		{
			Name: "typescript", Label: "TypeScript", Judge0ID: ids["typescript"],
			Template: "function solution(prices: number[]): number {\n    // Your code here\n    return 0;\n}",
		},
		{
			Name: "ruby", Label: "Ruby", Judge0ID: ids["ruby"],
			Image: "ruby:3.3-alpine", File: "main.rb", Run: "ruby main.rb",
			Template: "def solution(prices)\n    # Your code here\n    0\nend",
		},
		{
			Name: "php", Label: "PHP", Judge0ID: ids["php"],
			Image: "php:8.3-cli-alpine", File: "main.php", Run: "php main.php",
			Template: "<?php\nfunction solution($prices) {\n    // Your code here\n    return 0;\n}",
		},
		{
			Name: "swift", Label: "Swift", Judge0ID: ids["swift"],
			Template: "func solution(_ prices: [Int]) -> Int {\n    // Your code here\n    return 0\n}",
		},
		{
			Name: "kotlin", Label: "Kotlin", Judge0ID: ids["kotlin"],
			Template: "fun solution(prices: IntArray): Int {\n    // Your code here\n    return 0\n}",
		},
	}
}

// builtinFixtures is the demo stock-price problem
func builtinFixtures() *models.FixtureSet {
	return &models.FixtureSet{
		Name:    DefaultFixtureSet,
		Problem: "Best Time to Buy and Sell Stock",
		Cases: []models.Fixture{
			{Input: "[7,1,5,3,6,4]", Expected: "7"},
			{Input: "[1,2,3,4,5]", Expected: "4"},
			{Input: "[7,6,4,3,1]", Expected: "0"},
			{Input: "[1,2]", Expected: "1"},
			{Input: "[2,1,2,0,1]", Expected: "2"},
		},
	}
}
