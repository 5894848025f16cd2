package samples

import (
	"github.com/KirkDiggler/codered/internal/models"
)

var builtin = []*models.Sample{
	{
		ID:       1,
		Language: "javascript",
		Title:    "Array Sum Function",
		CorrectArtifact: `function sumArray(arr) {
  let sum = 0;
  for (let i = 0; i < arr.length; i++) {
    sum += arr[i];
  }
  return sum;
}`,
		Defects: []models.Defect{
			{
				Content: `function sumArray(arr) {
  let sum = 0;
  for (let i = 0; i <= arr.length; i++) {
    sum += arr[i];
  }
  return sum;
}`,
				Description: "Off-by-one error: i <= arr.length should be i < arr.length",
			},
			{
				Content: `function sumArray(arr) {
  let sum = 1;
  for (let i = 0; i < arr.length; i++) {
    sum += arr[i];
  }
  return sum;
}`,
				Description: "Wrong initialization: sum should start at 0, not 1",
			},
			{
				Content: `function sumArray(arr) {
  let sum = 0;
  for (let i = 1; i < arr.length; i++) {
    sum += arr[i];
  }
  return sum;
}`,
				Description: "Skipping first element: i should start at 0, not 1",
			},
		},
	},
	{
		ID:       2,
		Language: "javascript",
		Title:    "Find Maximum Value",
		CorrectArtifact: `function findMax(numbers) {
  if (numbers.length === 0) return null;
  let max = numbers[0];
  for (let i = 1; i < numbers.length; i++) {
    if (numbers[i] > max) {
      max = numbers[i];
    }
  }
  return max;
}`,
		Defects: []models.Defect{
			{
				Content: `function findMax(numbers) {
  if (numbers.length === 0) return null;
  let max = 0;
  for (let i = 1; i < numbers.length; i++) {
    if (numbers[i] > max) {
      max = numbers[i];
    }
  }
  return max;
}`,
				Description: "Wrong initialization: max should be numbers[0], not 0",
			},
			{
				Content: `function findMax(numbers) {
  if (numbers.length === 0) return null;
  let max = numbers[0];
  for (let i = 1; i < numbers.length; i++) {
    if (numbers[i] >= max) {
      max = numbers[i];
    }
  }
  return max;
}`,
				Description: "Wrong comparison: should be >, not >=",
			},
			{
				Content: `function findMax(numbers) {
  if (numbers.length === 0) return null;
  let max = numbers[0];
  for (let i = 0; i < numbers.length; i++) {
    if (numbers[i] > max) {
      max = numbers[i];
    }
  }
  return max;
}`,
				Description: "Redundant comparison: loop should start at i = 1",
			},
		},
	},
	{
		ID:       3,
		Language: "javascript",
		Title:    "String Reversal",
		CorrectArtifact: `function reverseString(str) {
  let reversed = '';
  for (let i = str.length - 1; i >= 0; i--) {
    reversed += str[i];
  }
  return reversed;
}`,
		Defects: []models.Defect{
			{
				Content: `function reverseString(str) {
  let reversed = '';
  for (let i = str.length; i >= 0; i--) {
    reversed += str[i];
  }
  return reversed;
}`,
				Description: "Off-by-one: i should start at str.length - 1, not str.length",
			},
			{
				Content: `function reverseString(str) {
  let reversed = '';
  for (let i = str.length - 1; i > 0; i--) {
    reversed += str[i];
  }
  return reversed;
}`,
				Description: "Missing last character: condition should be i >= 0, not i > 0",
			},
		},
	},
}
